package auditapp

import (
	"github.com/mubas-somase/voting-backend/internal/application/audit/auditevent"
)

type App struct {
	Event *auditevent.Handler
}

type Args struct {
	Repo auditevent.Repo
}

func NewApp(args Args) *App {
	return &App{
		Event: auditevent.NewHandler(auditevent.HandlerArgs{Repo: args.Repo}),
	}
}

package mail

import (
	"github.com/mubas-somase/voting-backend/internal/application/mail/mailcmd"
)

type App struct {
	Command Command
}

type Command struct {
	SelfTest *mailcmd.SelfTestHandler
}

type Args struct {
	Diagnoser mailcmd.Diagnoser
}

func NewApp(args Args) *App {
	return &App{
		Command: Command{
			SelfTest: mailcmd.NewSelfTestHandler(mailcmd.SelfTestHandlerArgs{Diagnoser: args.Diagnoser}),
		},
	}
}

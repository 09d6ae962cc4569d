package candidateapp

import (
	"github.com/mubas-somase/voting-backend/internal/application/candidate/candidatecmd"
	"github.com/mubas-somase/voting-backend/internal/application/candidate/candidatequery"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
)

type App struct {
	Command Command
	Query   Query
}

type Command struct {
	Apply *candidatecmd.ApplyHandler
}

type Query struct {
	CheckApplication *candidatequery.CheckApplicationHandler
}

type Repo interface {
	candidatecmd.AccountReader
	candidatecmd.ApplicationRepo
}

type Args struct {
	Repo         Repo
	Storage      candidatecmd.PhotoStorage
	PhotoService *photo.Service
}

func NewApp(args Args) *App {
	return &App{
		Command: Command{
			Apply: candidatecmd.NewApplyHandler(candidatecmd.ApplyHandlerArgs{
				Accounts:     args.Repo,
				Applications: args.Repo,
				Storage:      args.Storage,
				PhotoService: args.PhotoService,
			}),
		},
		Query: Query{
			CheckApplication: candidatequery.NewCheckApplicationHandler(candidatequery.CheckApplicationHandlerArgs{
				Reader: args.Repo,
			}),
		},
	}
}

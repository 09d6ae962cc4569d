package registration

import (
	"time"

	"github.com/mubas-somase/voting-backend/internal/application/registration/registrationcmd"
	"github.com/mubas-somase/voting-backend/internal/domain/valueobject/photo"
)

type App struct {
	Command Command
}

type Command struct {
	Register      *registrationcmd.RegisterHandler
	Activate      *registrationcmd.ActivateHandler
	DeleteAccount *registrationcmd.DeleteAccountHandler
}

type Args struct {
	Repo         registrationcmd.AccountRepo
	Storage      registrationcmd.PhotoStorage
	PhotoService *photo.Service
	Issuer       registrationcmd.TokenIssuer
	Sender       registrationcmd.MailSender
	FrontendURL  string
	LinkTTL      time.Duration
}

func NewApp(args Args) *App {
	return &App{
		Command: Command{
			Register: registrationcmd.NewRegisterHandler(registrationcmd.RegisterHandlerArgs{
				Repo:         args.Repo,
				Storage:      args.Storage,
				PhotoService: args.PhotoService,
				Issuer:       args.Issuer,
				Sender:       args.Sender,
				FrontendURL:  args.FrontendURL,
				LinkTTL:      args.LinkTTL,
			}),
			Activate: registrationcmd.NewActivateHandler(registrationcmd.ActivateHandlerArgs{
				Repo:   args.Repo,
				Issuer: args.Issuer,
			}),
			DeleteAccount: registrationcmd.NewDeleteAccountHandler(registrationcmd.DeleteAccountHandlerArgs{
				Repo:    args.Repo,
				Storage: args.Storage,
			}),
		},
	}
}

package watermill

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"

	auditapp "github.com/mubas-somase/voting-backend/internal/application/audit"
	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/watermillx"
)

// Streams lists every outbox topic the handlers below subscribe to.
var Streams = []string{
	user.AccountEventStreamName,
	candidate.ApplicationEventStreamName,
}

type Port struct {
	eventProcessor *cqrs.EventProcessor
}

type AppEventHandlers struct {
	Audit *auditapp.App
}

func NewPort(router *message.Router, conn *pgxpool.Pool, wmlogger watermill.LoggerAdapter) (*Port, error) {
	return newPort(router, conn, wmlogger, watermillx.ProcessorOptions{})
}

// NewPortForTest polls aggressively and creates the outbox tables on subscribe.
func NewPortForTest(router *message.Router, conn *pgxpool.Pool, wmlogger watermill.LoggerAdapter) (*Port, error) {
	return newPort(router, conn, wmlogger, watermillx.ProcessorOptions{
		PollInterval:     10 * time.Millisecond,
		InitializeSchema: true,
	})
}

func newPort(router *message.Router, conn *pgxpool.Pool, wmlogger watermill.LoggerAdapter, opts watermillx.ProcessorOptions) (*Port, error) {
	eventProcessor, err := watermillx.NewEventProcessor(router, conn, wmlogger, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create event processor: %w", err)
	}

	return &Port{eventProcessor: eventProcessor}, nil
}

func (p *Port) Run(_ context.Context, handlers AppEventHandlers) error {
	err := p.eventProcessor.AddHandlers(
		cqrs.NewEventHandler("AuditOnApplicationSubmitted", handlers.Audit.Event.OnApplicationSubmitted),
		cqrs.NewEventHandler("AuditOnAccountActivated", handlers.Audit.Event.OnAccountActivated),
		cqrs.NewEventHandler("AuditOnAccountDeleted", handlers.Audit.Event.OnAccountDeleted),
	)
	if err != nil {
		return fmt.Errorf("failed to add event handlers: %w", err)
	}

	return nil
}

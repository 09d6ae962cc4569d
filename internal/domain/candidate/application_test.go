package candidate_test

import (
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mubas-somase/voting-backend/internal/domain/candidate"
	"github.com/mubas-somase/voting-backend/internal/domain/user"
	"github.com/mubas-somase/voting-backend/pkg/errorx"
	"github.com/mubas-somase/voting-backend/pkg/i18nx"
	"github.com/mubas-somase/voting-backend/pkg/validationx"
)

func validSubmitArgs() candidate.SubmitArgs {
	return candidate.SubmitArgs{
		ID:        candidate.NewID(),
		AccountID: user.NewID(),
		Email:     "mse23-cbanda@mubas.ac.mw",
		FullName:  "Chisomo Banda",
		Position:  candidate.PositionTreasurer,
		Phone:     "+265 999 123 456",
		Slogan:    "Every kwacha counted",
		Manifesto: "Transparent books and monthly reports.",
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	args := validSubmitArgs()
	app, err := candidate.Submit(args)
	require.NoError(t, err)

	assert.Equal(t, args.ID, app.ID())
	assert.Equal(t, args.AccountID, app.AccountID())
	assert.Equal(t, args.FullName, app.FullName())
	assert.Equal(t, candidate.PositionTreasurer, app.Position())
	assert.Equal(t, candidate.StatusPending, app.Status())

	events := app.GetUncommittedEvents()
	require.Len(t, events, 1)
	submitted, ok := events[0].(*candidate.ApplicationSubmitted)
	require.True(t, ok)
	assert.Equal(t, args.ID, submitted.ApplicationID)
	assert.Equal(t, args.Position, submitted.Position)
	assert.Equal(t, candidate.ApplicationEventStreamName, submitted.GetStreamName())
}

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*candidate.SubmitArgs)
		want   validation.Errors
	}{
		{
			name:   "unknown position",
			modify: func(a *candidate.SubmitArgs) { a.Position = "emperor" },
			want:   validation.Errors{"position": candidate.ErrInvalidPosition},
		},
		{
			name:   "bad phone",
			modify: func(a *candidate.SubmitArgs) { a.Phone = "12345" },
			want:   validation.Errors{"phone": validationx.ErrInvalidPhone},
		},
		{
			name:   "missing name",
			modify: func(a *candidate.SubmitArgs) { a.FullName = "" },
			want:   validation.Errors{"full_name": validation.ErrRequired},
		},
		{
			name:   "slogan too long",
			modify: func(a *candidate.SubmitArgs) { a.Slogan = strings.Repeat("x", candidate.MaxSloganLen+1) },
			want:   validation.Errors{"slogan": validation.ErrLengthTooLong},
		},
		{
			name: "manifesto too long",
			modify: func(a *candidate.SubmitArgs) {
				a.Manifesto = strings.Repeat("word ", candidate.MaxManifestoLen+1)
			},
			want: validation.Errors{"manifesto": validation.NewError(i18nx.ValidationTooManyWords, "")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := validSubmitArgs()
			tt.modify(&args)
			app, err := candidate.Submit(args)
			assert.Nil(t, app)
			validationx.AssertValidationErrors(t, err, tt.want)
		})
	}
}

func TestPosition(t *testing.T) {
	t.Parallel()

	assert.Len(t, candidate.Positions(), 9)
	for _, p := range candidate.Positions() {
		assert.True(t, p.IsValid(), p)
		assert.NotEmpty(t, p.Display(), p)
	}
	assert.Equal(t, "Vice President", candidate.PositionVicePresident.Display())
	assert.False(t, candidate.Position("emperor").IsValid())
	assert.Empty(t, candidate.Position("emperor").Display())
}

func TestDuplicateErrors(t *testing.T) {
	t.Parallel()

	err := candidate.NewDuplicatePositionError(candidate.PositionPresident)
	assert.ErrorIs(t, err, candidate.ErrDuplicatePosition)
	assert.NotErrorIs(t, err, candidate.ErrDuplicateApplication)
	assert.Equal(t, "President", err.MessageArgs[i18nx.ArgPosition])
	assert.True(t, errorx.IsConflict(err))

	err = candidate.NewDuplicateApplicationError(candidate.PositionTreasurer)
	assert.ErrorIs(t, err, candidate.ErrDuplicateApplication)
	assert.Equal(t, "Treasurer", err.MessageArgs[i18nx.ArgPosition])
}

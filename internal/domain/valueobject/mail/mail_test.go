package mail

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mubas-somase/voting-backend/pkg/errorx"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("send: %w", NewDeliveryError(KindTimeout, io.EOF))
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, KindUnexpected, KindOf(errors.New("boom")))
	assert.Equal(t, "smtp_authentication", KindAuthentication.ErrorType())
}

func TestNewDeliveryFailedError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err      error
		wantType string
	}{
		{err: NewDeliveryError(KindAuthentication, nil), wantType: "smtp_authentication"},
		{err: NewDeliveryError(KindConnection, nil), wantType: "smtp_connection"},
		{err: NewDeliveryError(KindDisconnected, nil), wantType: "smtp_disconnected"},
		{err: NewDeliveryError(KindTimeout, nil), wantType: "smtp_timeout"},
		{err: NewDeliveryError(KindGeneral, nil), wantType: "smtp_general"},
		{err: errors.New("panic in template"), wantType: "smtp_unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.wantType, func(t *testing.T) {
			t.Parallel()
			got := NewDeliveryFailedError(tt.err)
			assert.Equal(t, errorx.CodeDeliveryFailed, got.Code)
			assert.Equal(t, tt.wantType, got.ErrorType)
			assert.Equal(t, http.StatusInternalServerError, got.HTTPStatusCode())
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

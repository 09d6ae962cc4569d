package env

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "prod", want: Prod},
		{in: " DEV ", want: Dev},
		{in: "local", want: Local},
		{in: "test", want: Test},
		{in: "staging", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_SlogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelInfo, Prod.SlogLevel())
	assert.Equal(t, slog.LevelDebug, Dev.SlogLevel())
	assert.False(t, Prod.IsDiagnosticAllowed())
	assert.True(t, Local.IsDiagnosticAllowed())
}

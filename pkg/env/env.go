package env

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
)

type Mode string

const (
	Test  Mode = "test"
	Local Mode = "local"
	Dev   Mode = "dev"
	Prod  Mode = "prod"
)

var currentMode atomic.Value

func init() {
	currentMode.Store(Test)
}

func SetMode(mode Mode) {
	if !mode.Validate() {
		panic("invalid mode: " + mode.String())
	}
	currentMode.Store(mode)
}

func Current() Mode {
	return currentMode.Load().(Mode)
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Validate() {
		return "", fmt.Errorf("unknown mode %q, expected one of test, local, dev, prod", s)
	}
	return m, nil
}

func (e Mode) String() string {
	return string(e)
}

func (e Mode) Validate() bool {
	switch e {
	case Local, Test, Dev, Prod:
		return true
	default:
		return false
	}
}

// IsDiagnosticAllowed reports whether operator-only endpoints may be exposed.
func (e Mode) IsDiagnosticAllowed() bool {
	return e != Prod
}

func (e Mode) SlogLevel() slog.Level {
	switch e {
	case Test, Local, Dev:
		return slog.LevelDebug
	case Prod:
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

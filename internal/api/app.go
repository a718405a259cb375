package api

import (
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/notify"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Clock() internal.Clock
	Store() storage.Store
	Planner() *notify.Planner
}

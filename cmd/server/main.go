package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/api"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/config"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/notify"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/storage"
)

type app struct {
	logger  internal.Logger
	clock   internal.Clock
	store   storage.Store
	planner *notify.Planner
}

func (a *app) Logger() internal.Logger  { return a.logger }
func (a *app) Clock() internal.Clock    { return a.clock }
func (a *app) Store() storage.Store     { return a.store }
func (a *app) Planner() *notify.Planner { return a.planner }

func main() {
	cfg := config.Load()

	var zl *zap.Logger
	var err error
	if cfg.Env == "production" {
		zl, err = zap.NewProduction()
	} else {
		zl, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()
	logger := internal.NewZapLogger(zl.Sugar())

	var store storage.Store
	switch cfg.DBType {
	case "postgres":
		store, err = storage.NewPostgresBackend(cfg.DBDSN, logger)
	default:
		if dir := filepath.Dir(cfg.StoreFile); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		store, err = storage.NewFileBackend(cfg.StoreFile, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	if fs, ok := store.(*storage.FileStore); ok && fs.Corrupted() {
		logger.Warn("stored data was corrupt and has been reset")
	}

	clock := resolveClock(cfg, logger)
	delivery := notify.NewLocalDelivery()
	delivery.OnFired = func(handle string) {
		logger.Infof("notification fired: %s", handle)
	}

	a := &app{
		logger:  logger,
		clock:   clock,
		store:   store,
		planner: notify.NewPlanner(delivery, logger),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.Register(r, a)

	logger.Infof("server running on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}

func resolveClock(cfg *config.Config, logger internal.Logger) internal.Clock {
	if cfg.Timezone == "" {
		return internal.SystemClock{}
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warnf("invalid TZ_OVERRIDE %q, using system timezone: %v", cfg.Timezone, err)
		return internal.SystemClock{}
	}
	return tzClock{loc: loc}
}

// tzClock pins the timezone while keeping the real wall clock.
type tzClock struct {
	loc *time.Location
}

func (c tzClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c tzClock) Location() *time.Location { return c.loc }

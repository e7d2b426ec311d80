package main

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/jask/voltalert/internal/alert"
	"github.com/jask/voltalert/internal/charging"
	"github.com/jask/voltalert/internal/config"
	"github.com/jask/voltalert/internal/database"
	"github.com/jask/voltalert/internal/database/repository"
	"github.com/jask/voltalert/internal/events"
	"github.com/jask/voltalert/internal/i18n"
	"github.com/jask/voltalert/internal/logging"
	"github.com/jask/voltalert/internal/service"
)

// runtime holds everything a command needs once config is loaded.
type runtime struct {
	cfg      config.Config
	log      *logging.Logger
	db       *sql.DB
	bus      *events.Bus
	journal  *service.JournalService
	sessions *repository.SessionRepo
	dict     *i18n.Dictionary
	detach   func()
}

func openRuntime(cfg config.Config, logOut io.Writer) (*runtime, error) {
	logger := logging.New(logOut, logging.ParseLevel(cfg.Log.Level))

	db, err := database.OpenMigrated(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load catalogs: %w", err)
	}
	bundle.SetLogger(logger)

	rt := &runtime{
		cfg:      cfg,
		log:      logger,
		db:       db,
		bus:      events.NewBus(64),
		journal:  &service.JournalService{Journal: repository.NewJournalRepo(db), Log: logger.With("journal")},
		sessions: repository.NewSessionRepo(db),
		dict:     bundle.Dictionary(cfg.UI.Locale),
		detach:   func() {},
	}
	if cfg.Journal.Enabled {
		rt.detach = rt.journal.Attach(rt.bus)
	}
	logger.Infof("database %s, locale %s", cfg.Database.Path, rt.dict.Locale())
	return rt, nil
}

func (rt *runtime) newManager(p alert.Presenter) *alert.Manager {
	return alert.New(p, rt.dict, alert.WithPublisher(rt.bus), alert.WithLogger(rt.log))
}

func (rt *runtime) newSimulator() *charging.Simulator {
	sc := rt.cfg.Simulator
	return &charging.Simulator{
		Texts:       rt.dict,
		Store:       rt.sessions,
		FailureRate: sc.FailureRate,
		Seed:        sc.Seed,
		Step:        sc.Step,
		Log:         rt.log,
	}
}

// Close flushes queued journal writes before closing the database.
func (rt *runtime) Close() {
	rt.detach()
	rt.bus.Close()
	stats := rt.journal.Stats()
	if stats.Dropped > 0 {
		rt.log.Warnf("journal dropped %d events under load", stats.Dropped)
	}
	rt.log.Debugf("journal: %d written, %d failed", stats.Written, stats.Failed)
	if err := rt.db.Close(); err != nil {
		rt.log.Warnf("close db: %v", err)
	}
}

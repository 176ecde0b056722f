package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tamadeu/divi-import/internal/config"
	"github.com/tamadeu/divi-import/internal/logging"
	"github.com/tamadeu/divi-import/internal/staging"
	"github.com/tamadeu/divi-import/internal/store"
)

// env bundles the collaborators every pipeline command needs.
type env struct {
	cfg *config.Config
	db  *store.DB
	stg *staging.Store
	log zerolog.Logger
}

// openEnv loads the workspace config from the working directory and opens
// the store and staging area.
func openEnv(verbose bool) (*env, error) {
	log := logging.New(verbose)

	cfg, err := config.Load(config.FileName)
	if err != nil {
		return nil, fmt.Errorf("loading %s (run 'divi-import init' first): %w", config.FileName, err)
	}

	db, err := store.Open(cfg.Workspace.Database, cfg.Workspace.ID, cfg.Workspace.UserID, log)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg: cfg,
		db:  db,
		stg: staging.NewStore(cfg.Import.StagingPath, log),
		log: log,
	}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.log.Warn().Err(err).Msg("closing database")
	}
}

package commands

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/celestiaorg/faceswap/config"
	"github.com/celestiaorg/faceswap/internal/appctx"
	"github.com/celestiaorg/faceswap/internal/db"
	"github.com/celestiaorg/faceswap/internal/db/repos"
	"github.com/celestiaorg/faceswap/internal/jobs"
)

// localEnv is what local commands need: the configuration and the job
// database of this machine
type localEnv struct {
	cfg  *config.Config
	db   *gorm.DB
	jobs *jobs.Manager
}

func openLocal() (*localEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	gdb, err := db.New(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("error opening job database: %w", err)
	}

	store := repos.NewJobRepository(gdb)
	return &localEnv{
		cfg:  cfg,
		db:   gdb,
		jobs: jobs.NewManager(jobs.StoreSet{appctx.CLI: store}, nil),
	}, nil
}

func (e *localEnv) Close() {
	_ = db.Close(e.db)
}

package app

import (
	"context"

	"github.com/jwalitptl/hospital-api/config"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
)

// OpenStore connects the configured backend. For postgres the schema is
// applied first when migrate is set. The returned func releases the store.
func OpenStore(ctx context.Context, cfg *config.Config, migrate bool) (repository.Store, func() error, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		return memory.NewStore(), func() error { return nil }, nil
	}

	db, err := postgres.NewDB(cfg.Database.ToPostgres())
	if err != nil {
		return nil, nil, err
	}
	if migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return postgres.NewStore(db), db.Close, nil
}

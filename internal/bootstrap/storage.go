package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SerjoschDuering/ifcore-platform/config"
	"github.com/SerjoschDuering/ifcore-platform/internal/adapters/objectstore"
	"github.com/SerjoschDuering/ifcore-platform/internal/core"
)

// NewObjectStore builds the model file store selected by cfg.Driver. The
// minio driver is wrapped so transient failures are retried.
//
//nolint:ireturn // the driver is picked at runtime.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (core.ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Driver == config.StorageDriverMemory {
		logger.WarnContext(ctx, "using in-memory object storage; uploads are lost on restart")
		return objectstore.NewMemoryStore(), nil
	}

	store, err := objectstore.NewMinioStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("create object store: %w", err)
	}
	if cfg.CreateBucket {
		if err = store.EnsureBucket(ctx, cfg.Region, logger); err != nil {
			return nil, fmt.Errorf("ensure bucket %q: %w", cfg.Bucket, err)
		}
	}

	logger.InfoContext(ctx, "object storage ready",
		"driver", cfg.Driver,
		"endpoint", cfg.Endpoint,
		"bucket", cfg.Bucket,
	)
	return objectstore.NewRetryStore(store, cfg.MaxRetries), nil
}

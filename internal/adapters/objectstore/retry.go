package objectstore

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
)

var _ core.ObjectStore = (*RetryStore)(nil)

// RetryStore wraps an object store in backoff loops. Missing objects are
// never retried, and a Put whose body cannot be rewound is tried once.
type RetryStore struct {
	store   core.ObjectStore
	backoff func() retry.Backoff
}

// NewRetryStoreBackoff wraps store with a custom backoff factory.
func NewRetryStoreBackoff(store core.ObjectStore, backoff func() retry.Backoff) *RetryStore {
	return &RetryStore{store: store, backoff: backoff}
}

// NewRetryStore retries up to maxRetries times with exponential backoff from 200ms.
func NewRetryStore(store core.ObjectStore, maxRetries uint64) *RetryStore {
	return &RetryStore{
		store: store,
		backoff: func() retry.Backoff {
			b := retry.NewExponential(200 * time.Millisecond)
			b = retry.WithMaxRetries(maxRetries, b)
			return retry.WithCappedDuration(5*time.Second, b)
		},
	}
}

func retryable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrObjectNotFound) || errors.Is(err, context.Canceled) {
		return err
	}
	return retry.RetryableError(err)
}

// Put uploads with retries when the body is an io.Seeker.
func (r *RetryStore) Put(ctx context.Context, params core.PutObjectParams) error {
	seeker, ok := params.Body.(io.Seeker)
	if !ok {
		return r.store.Put(ctx, params)
	}
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return retryable(r.store.Put(ctx, params))
	})
}

// Get opens the object with retries.
func (r *RetryStore) Get(ctx context.Context, key string) (*core.Object, error) {
	var obj *core.Object
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		var err error
		obj, err = r.store.Get(ctx, key)
		return retryable(err)
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Delete removes the object with retries.
func (r *RetryStore) Delete(ctx context.Context, key string) error {
	return retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		return retryable(r.store.Delete(ctx, key))
	})
}

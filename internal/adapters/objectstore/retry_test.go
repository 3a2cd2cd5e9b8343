package objectstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/SerjoschDuering/ifcore-platform/internal/core"
	"github.com/SerjoschDuering/ifcore-platform/internal/mocks"
)

func fastBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewConstant(time.Millisecond))
}

func TestRetryStore_GetRetriesTransientErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockObjectStore(ctrl)

	want := &core.Object{Body: io.NopCloser(strings.NewReader("ISO-10303-21;")), Size: 13}
	gomock.InOrder(
		inner.EXPECT().Get(gomock.Any(), "ifc/p1/a.ifc").Return(nil, errors.New("connection reset")),
		inner.EXPECT().Get(gomock.Any(), "ifc/p1/a.ifc").Return(want, nil),
	)

	store := NewRetryStoreBackoff(inner, fastBackoff)
	got, err := store.Get(context.Background(), "ifc/p1/a.ifc")
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestRetryStore_GetDoesNotRetryMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockObjectStore(ctrl)
	inner.EXPECT().Get(gomock.Any(), "missing").Return(nil, core.ErrObjectNotFound).Times(1)

	store := NewRetryStoreBackoff(inner, fastBackoff)
	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, core.ErrObjectNotFound)
}

func TestRetryStore_PutRewindsSeekableBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockObjectStore(ctrl)

	var seen []string
	inner.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p core.PutObjectParams) error {
			b, _ := io.ReadAll(p.Body)
			seen = append(seen, string(b))
			if len(seen) == 1 {
				return errors.New("503 slow down")
			}
			return nil
		}).Times(2)

	store := NewRetryStoreBackoff(inner, fastBackoff)
	err := store.Put(context.Background(), core.PutObjectParams{Key: "k", Body: bytes.NewReader([]byte("model")), Size: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"model", "model"}, seen)
}

func TestRetryStore_PutNonSeekableTriesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockObjectStore(ctrl)
	inner.EXPECT().Put(gomock.Any(), gomock.Any()).Return(errors.New("boom")).Times(1)

	store := NewRetryStoreBackoff(inner, fastBackoff)
	err := store.Put(context.Background(), core.PutObjectParams{Key: "k", Body: io.NopCloser(strings.NewReader("x")), Size: 1})
	require.Error(t, err)
}

func TestMemoryStore_RoundTripInfersSize(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, core.PutObjectParams{Key: "ifc/p/a.ifc", Body: strings.NewReader("data"), ContentType: "application/octet-stream"}))
	assert.Equal(t, 1, store.Len())

	obj, err := store.Get(ctx, "ifc/p/a.ifc")
	require.NoError(t, err)
	b, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
	assert.Equal(t, int64(4), obj.Size)
	assert.NotEmpty(t, obj.ETag)

	require.NoError(t, store.Delete(ctx, "ifc/p/a.ifc"))
	_, err = store.Get(ctx, "ifc/p/a.ifc")
	require.ErrorIs(t, err, core.ErrObjectNotFound)
}

package groundit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/groundit/ai/mock"
	badgerqueue "github.com/poiesic/groundit/queue/badger"
)

func openTestSystem(t *testing.T, opts ...SystemOption) *System {
	t.Helper()
	opts = append([]SystemOption{WithProvider(mock.NewMockProvider())}, opts...)
	sys, err := Open(filepath.Join(t.TempDir(), "data"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { sys.Close() })
	return sys
}

func TestOpen(t *testing.T) {
	sys := openTestSystem(t)

	assert.NotNil(t, sys.Documents())
	assert.NotNil(t, sys.Vectors())
	assert.NotNil(t, sys.Queue())
	assert.NotNil(t, sys.Provider())
}

func TestSystem_FactoryMethods(t *testing.T) {
	sys := openTestSystem(t)

	t.Run("can create worker", func(t *testing.T) {
		worker, err := sys.NewWorker()
		require.NoError(t, err)
		require.NotNil(t, worker)
		worker.Release()
	})

	t.Run("can create answerer", func(t *testing.T) {
		answerer, err := sys.NewAnswerer()
		require.NoError(t, err)
		require.NotNil(t, answerer)
	})

	t.Run("can create reindexer", func(t *testing.T) {
		reindexer, err := sys.NewReindexer(nil, nil)
		require.NoError(t, err)
		require.NotNil(t, reindexer)
	})
}

func TestUploadProcessAnswer(t *testing.T) {
	sys := openTestSystem(t)
	ctx := context.Background()

	etag, err := sys.Upload(ctx, "guides/setup.txt",
		[]byte("hold the power button for ten seconds to reset the device"))
	require.NoError(t, err)
	assert.NotEmpty(t, etag)

	worker, err := sys.NewWorker()
	require.NoError(t, err)
	defer worker.Release()
	require.NoError(t, worker.ProcessNext(ctx))

	manifest, err := sys.Vectors().Manifest(ctx, "guides/setup.txt")
	require.NoError(t, err)
	assert.Equal(t, etag, manifest.ETag)

	answerer, err := sys.NewAnswerer()
	require.NoError(t, err)

	answer := answerer.Answer(ctx, "how do I reset the device?")
	assert.NotEmpty(t, answer.Result)
	require.NotEmpty(t, answer.References)
	assert.Equal(t, "guides/setup.txt", answer.References[0].Source)
}

func TestUploadIsReprocessable(t *testing.T) {
	sys := openTestSystem(t, WithQueueOptions(
		badgerqueue.WithLeaseDuration(time.Minute),
		badgerqueue.WithMaxDeliveryAttempts(1)))
	ctx := context.Background()

	worker, err := sys.NewWorker()
	require.NoError(t, err)
	defer worker.Release()

	_, err = sys.Upload(ctx, "doc.txt", []byte("first revision"))
	require.NoError(t, err)
	require.NoError(t, worker.ProcessNext(ctx))

	etag, err := sys.Upload(ctx, "doc.txt", []byte("second revision, different text"))
	require.NoError(t, err)
	require.NoError(t, worker.ProcessNext(ctx))

	records, err := sys.Vectors().Records(ctx, "doc.txt")
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Contains(t, records[0].Text, "second revision")

	manifest, err := sys.Vectors().Manifest(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, etag, manifest.ETag)
}

func TestSystem_Close(t *testing.T) {
	sys, err := Open(filepath.Join(t.TempDir(), "data"),
		WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	assert.NoError(t, sys.Close())
}

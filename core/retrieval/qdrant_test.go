package retrieval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startQdrant(t *testing.T) string {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "qdrant/qdrant:v1.14.0",
			ExposedPorts: []string{"6334/tcp"},
			WaitingFor:   wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start qdrant container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6334/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

func TestQdrantStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping qdrant test in short mode (requires container)")
	}

	addr := startQdrant(t)
	store, err := NewQdrantStore(context.Background(), addr, "course_chunks_test", testDim)
	require.NoError(t, err)
	defer store.Close()

	runStoreSuite(t, store)

	t.Run("Reconnecting reuses the collection", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, testChunks()))

		again, err := NewQdrantStore(ctx, addr, "course_chunks_test", testDim)
		require.NoError(t, err)
		defer again.Close()

		count, err := again.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("Payload round trip keeps metadata lists", func(t *testing.T) {
		ctx := context.Background()
		scored, err := store.Search(ctx, axis(1), 1)
		require.NoError(t, err)
		require.Len(t, scored, 1)
		assert.Equal(t, model.ChunkTypePayment, scored[0].Chunk.Type)
		assert.Equal(t, []string{"3 months"}, scored[0].Chunk.EMIOptions())
	})
}

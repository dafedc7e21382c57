package jobs

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpurcell/contentapi/config"
)

var testRedis *miniredis.Miniredis

func TestMain(m *testing.M) {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}
	testRedis = mr
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		panic(err)
	}
	config.Set(config.AppConfig{
		JWTSecret: "jobs-test-secret",
		RedisHost: mr.Host(),
		RedisPort: port,
	})

	code := m.Run()
	mr.Close()
	os.Exit(code)
}

func TestEnqueueWelcomeEmail(t *testing.T) {
	testRedis.FlushAll()

	require.NoError(t, EnqueueWelcomeEmail("new@example.com", "New User"))

	queued, err := testRedis.List(welcomeQueueKey)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var job WelcomeEmailJob
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &job))
	assert.Equal(t, "new@example.com", job.Email)
	assert.Equal(t, "New User", job.Name)
}

func TestWorkerDrainsQueue(t *testing.T) {
	testRedis.FlushAll()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartWorker(ctx)

	require.NoError(t, EnqueueWelcomeEmail("drained@example.com", "Drained"))

	// Delivery fails without an SMTP relay; the job is still consumed.
	assert.Eventually(t, func() bool {
		items, err := testRedis.List(welcomeQueueKey)
		return err != nil || len(items) == 0
	}, 5*time.Second, 50*time.Millisecond)
}

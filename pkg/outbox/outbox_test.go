package outbox

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/anshu200710/ai-agent-sub000/pkg/backend"
	"github.com/anshu200710/ai-agent-sub000/pkg/errorsx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviders(t *testing.T) {
	ob, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, ob)

	ob, err = New(context.Background(), Config{Provider: "Memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, ob)

	_, err = New(context.Background(), Config{Provider: "kafka"})
	require.Error(t, err)
	assert.True(t, errorsx.HasReason(err, errorsx.ReasonConfigInvalid))
}

func TestMemoryKeepsEntries(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Enqueue(context.Background(), Entry{CallID: "CA1", Payload: backend.Complaint{MachineNo: "42"}}))
	got := m.Entries()
	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].Payload.MachineNo)
}

// Runs only when OUTBOX_TEST_REDIS_URL points at a scratch redis.
func TestRedisEnqueue(t *testing.T) {
	url := os.Getenv("OUTBOX_TEST_REDIS_URL")
	if url == "" {
		t.Skip("OUTBOX_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	key := "complaintline:test:" + uuid.NewString()
	r, err := NewRedis(ctx, url, key)
	require.NoError(t, err)
	defer func() {
		_ = r.rdb.Del(ctx, key).Err()
		_ = r.Close()
	}()

	require.NoError(t, r.Enqueue(ctx, Entry{ID: uuid.NewString(), CallID: "CA1", CreatedAt: time.Now()}))
	n, err := r.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

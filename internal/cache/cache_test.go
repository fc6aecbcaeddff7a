package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every operation on an unconnected client must degrade to a miss rather
// than fail, so the API keeps serving when redis is down.
func TestClient_FailsSafeWithoutRedis(t *testing.T) {
	ctx := context.Background()
	var c *Client

	data, err := c.Get(ctx, "key")
	require.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, c.Set(ctx, "key", []byte("value"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "key"))

	zero := &Client{}
	var out []string
	assert.False(t, zero.GetJSON(ctx, "key", &out))
	zero.SetJSON(ctx, "key", []string{"a"}, time.Minute)

	// Unmarshalable values are swallowed, not propagated.
	zero.SetJSON(ctx, "key", make(chan int), time.Minute)
}

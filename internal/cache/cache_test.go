package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledCache(t *testing.T) {
	c := New(nil, "test:", time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, c.Get(ctx, "snapshot", &dest), ErrCacheMiss)
	assert.NoError(t, c.Set(ctx, "snapshot", []string{"a"}))
	assert.ErrorIs(t, c.Get(ctx, "snapshot", &dest), ErrCacheMiss)
	assert.NoError(t, c.Delete(ctx, "snapshot"))
	assert.NoError(t, c.Ping(ctx))
}

func TestKeyPrefix(t *testing.T) {
	c := New(nil, "catalog:", time.Minute, nil)
	assert.Equal(t, "catalog:snapshot", c.key("snapshot"))
}

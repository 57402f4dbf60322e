package modelstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values map[string]string
	err    error
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func TestRedisBlobStore(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{values: map[string]string{}}
	store := NewRedisBlobStore(fake, "secanalytics:")

	_, err := store.Get(ctx, "m.json")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, store.Put(ctx, "m.json", []byte("blob")))
	assert.Equal(t, "blob", fake.values["secanalytics:m.json"])

	got, err := store.Get(ctx, "m.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), got)
}

func TestRedisBlobStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewRedisBlobStore(&fakeRedis{err: errors.New("dial tcp: refused")}, "")

	require.Error(t, store.Put(ctx, "k", []byte("x")))

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

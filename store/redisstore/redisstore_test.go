package redisstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilkit/obfuscator/asset"
	"github.com/veilkit/obfuscator/store"
	"github.com/veilkit/obfuscator/store/storetest"
)

// setupTestStore creates a miniredis instance and returns a connected Store.
func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s, err := New(Options{
		URL:            fmt.Sprintf("redis://%s", mr.Addr()),
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s, mr
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Seeder {
		s, _ := setupTestStore(t)
		return s
	})
}

func TestNew(t *testing.T) {
	t.Run("connection failure", func(t *testing.T) {
		_, err := New(Options{
			URL:            "redis://localhost:99999",
			ConnectTimeout: 100 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := New(Options{URL: "invalid://url"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse Redis URL")
	})
}

func TestKeyLayout(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s, err := New(Options{URL: fmt.Sprintf("redis://%s", mr.Addr()), Prefix: "lib"})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateContainer(ctx, "Out"))
	_, err = s.Create(ctx, "Out/tok.mat", storetest.Material("Skin"))
	require.NoError(t, err)

	assert.True(t, mr.Exists("lib:asset:Out/tok.mat"))
	assert.Equal(t, "tok", mr.HGet("lib:asset:Out/tok.mat", "name"))
	assert.Equal(t, "material", mr.HGet("lib:asset:Out/tok.mat", "kind"))
	assert.Equal(t, "Out/tok.mat", mr.HGet("lib:paths", "Out/tok.mat"))

	members, err := mr.Members("lib:containers")
	require.NoError(t, err)
	assert.Equal(t, []string{"Out"}, members)
}

func TestSharedLibrary(t *testing.T) {
	ctx := context.Background()
	first, mr := setupTestStore(t)
	second, err := New(Options{URL: fmt.Sprintf("redis://%s", mr.Addr())})
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, first.Put(ctx, asset.Info{Ref: "Assets/Skin.mat", Path: "Assets/Skin.mat"}, storetest.Material("Skin")))

	m, err := asset.LoadAs[*asset.Material](ctx, second, "Assets/Skin.mat")
	require.NoError(t, err)
	assert.Equal(t, "Skin", m.Name)
	require.NoError(t, second.Persist(ctx))
}

func TestPersistFailsWhenServerIsGone(t *testing.T) {
	s, mr := setupTestStore(t)
	mr.Close()

	err := s.Persist(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist")
}

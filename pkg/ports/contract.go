package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pixelpilot/pkg/domain"
	"github.com/aretw0/pixelpilot/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the interface contract. The store should be empty.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("150405.000000") + "-"

	t.Run("Set and Get", func(t *testing.T) {
		key := prefix + "mode"
		require.NoError(t, store.Set(ctx, key, domain.String("combat")))

		v, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, domain.String("combat"), v)

		for _, want := range []domain.Value{domain.Bool(true), domain.Int(-3), domain.Float(0.25)} {
			require.NoError(t, store.Set(ctx, key, want))
			got, _, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, want.Kind(), got.Kind())
			assert.True(t, want.Equal(got), "want %v got %v", want, got)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		v, ok, err := store.Get(ctx, prefix+"missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, v.IsZero())
	})

	t.Run("Invalid Key", func(t *testing.T) {
		assert.ErrorIs(t, store.Set(ctx, "  ", domain.Bool(true)), domain.ErrInvalidKey)
		_, _, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidKey)
	})

	t.Run("Toggle", func(t *testing.T) {
		key := prefix + "flag"
		on, err := store.Toggle(ctx, key)
		require.NoError(t, err)
		assert.True(t, on, "missing key toggles to true")

		on, err = store.Toggle(ctx, key)
		require.NoError(t, err)
		assert.False(t, on)

		require.NoError(t, store.Set(ctx, key, domain.String("x")))
		on, err = store.Toggle(ctx, key)
		require.NoError(t, err)
		assert.True(t, on, "non-bool counts as false")
	})

	t.Run("Increment", func(t *testing.T) {
		key := prefix + "count"
		n, err := store.Increment(ctx, key, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		n, err = store.Increment(ctx, key, -5)
		require.NoError(t, err)
		assert.Equal(t, int64(-3), n)
	})

	t.Run("CompareAndSet", func(t *testing.T) {
		key := prefix + "cas"
		ok, err := store.CompareAndSet(ctx, key, domain.Value{}, domain.Int(1))
		require.NoError(t, err)
		assert.True(t, ok, "zero old matches a missing key")

		ok, err = store.CompareAndSet(ctx, key, domain.Int(5), domain.Int(6))
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = store.CompareAndSet(ctx, key, domain.Int(1), domain.Int(2))
		require.NoError(t, err)
		assert.True(t, ok)

		v, _, _ := store.Get(ctx, key)
		assert.Equal(t, domain.Int(2), v)
	})

	t.Run("Delete and Snapshot", func(t *testing.T) {
		a, b := prefix+"snap-a", prefix+"snap-b"
		require.NoError(t, store.Set(ctx, a, domain.Int(1)))
		require.NoError(t, store.Set(ctx, b, domain.Bool(true)))

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Int(1), snap[a])
		assert.Equal(t, domain.Bool(true), snap[b])

		require.NoError(t, store.Delete(ctx, a))
		require.NoError(t, store.Delete(ctx, a), "deleting twice is fine")
		_, ok, err := store.Get(ctx, a)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Concurrent Increment", func(t *testing.T) {
		key := prefix + "race"
		const workers, each = 8, 25
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < each; j++ {
					_, err := store.Increment(ctx, key, 1)
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()
		v, _, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.Int(workers*each), v)
	})

	t.Run("No Torn Reads", func(t *testing.T) {
		key := prefix + "torn"
		written := make(map[string]bool)
		for i := 0; i < 50; i++ {
			written[fmt.Sprintf("value-%02d", i)] = true
		}
		require.NoError(t, store.Set(ctx, key, domain.String("value-00")))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.NoError(t, store.Set(ctx, key, domain.String(fmt.Sprintf("value-%02d", i))))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				v, ok, err := store.Get(ctx, key)
				if assert.NoError(t, err) && assert.True(t, ok) {
					s, _ := v.AsString()
					assert.True(t, written[s], "read a value nobody wrote: %q", s)
				}
			}
		}()
		wg.Wait()
	})
}

// RunGraphRepositoryContract verifies a GraphRepository implementation.
func RunGraphRepositoryContract(t *testing.T, repo GraphRepository) {
	ctx := context.Background()

	doc := schema.NewDocument("contract")
	doc.Nodes = []domain.NodeSpec{
		{ID: "white", Kind: domain.KindInput, Type: "pixel_color", Config: map[string]any{"x": 10, "y": 10, "target_rgb": "#ffffff"}},
		{ID: "press", Kind: domain.KindOutput, Type: "key_press", Config: map[string]any{"key": "space"}},
	}
	doc.Links = []domain.Link{{FromNode: "white", FromPort: domain.PortOut, ToNode: "press", ToPort: domain.PortTrig}}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "alpha", doc))
		loaded, err := repo.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, schema.DocumentType, loaded.Type)
		require.Len(t, loaded.Nodes, 2)
		assert.Equal(t, "press", loaded.Nodes[1].ID)
		assert.Equal(t, "space", loaded.Nodes[1].Config["key"])
		assert.Equal(t, doc.Links, loaded.Links)
	})

	t.Run("Overwrite", func(t *testing.T) {
		next := *doc
		next.Links = nil
		require.NoError(t, repo.Save(ctx, "alpha", &next))
		loaded, err := repo.Load(ctx, "alpha")
		require.NoError(t, err)
		assert.Empty(t, loaded.Links)
	})

	t.Run("Load Missing", func(t *testing.T) {
		_, err := repo.Load(ctx, "nope")
		assert.ErrorIs(t, err, ErrGraphNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "beta", doc))
		names, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "alpha")
		assert.Contains(t, names, "beta")
		assert.IsNonDecreasing(t, names)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "beta"))
		_, err := repo.Load(ctx, "beta")
		assert.ErrorIs(t, err, ErrGraphNotFound)
	})
}

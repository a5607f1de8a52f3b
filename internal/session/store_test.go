package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmgate/whatsapp-engine/internal/model"
)

func TestApply(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("merges data shallowly", func(t *testing.T) {
		cur := model.NewSession(now)
		cur.Data = map[string]any{"product_name": "Maize"}

		next := Apply(cur, Patch{Data: map[string]any{"product_price": 12.5}}, now)

		assert.Equal(t, "Maize", next.Data["product_name"])
		assert.Equal(t, 12.5, next.Data["product_price"])
	})

	t.Run("nil value removes key", func(t *testing.T) {
		cur := model.NewSession(now)
		cur.Data = map[string]any{"product_name": "Maize", "product_unit": "kg"}

		next := Apply(cur, Patch{Data: map[string]any{"product_unit": nil}}, now)

		assert.NotContains(t, next.Data, "product_unit")
		assert.Equal(t, "Maize", next.Data["product_name"])
	})

	t.Run("snapshots prior flow and data on change", func(t *testing.T) {
		cur := model.NewSession(now)
		cur.Flow = model.FlowProductName

		next := Apply(cur, Patch{
			Flow: FlowPtr(model.FlowProductCategory),
			Data: map[string]any{"product_name": "Maize"},
		}, now)

		flow, data, ok := Previous(next)
		require.True(t, ok)
		assert.Equal(t, model.FlowProductName, flow)
		assert.Empty(t, data)
	})

	t.Run("keeps existing snapshot when nothing changes", func(t *testing.T) {
		cur := model.NewSession(now)
		cur.Flow = model.FlowProductName
		first := Apply(cur, Patch{Flow: FlowPtr(model.FlowProductCategory)}, now)

		second := Apply(first, Patch{Flow: FlowPtr(model.FlowProductCategory)}, now)

		flow, _, ok := Previous(second)
		require.True(t, ok)
		assert.Equal(t, model.FlowProductName, flow)
	})

	t.Run("snapshot never nests a previous snapshot", func(t *testing.T) {
		cur := model.NewSession(now)
		a := Apply(cur, Patch{Flow: FlowPtr(model.FlowHarvestCrop)}, now)
		b := Apply(a, Patch{Flow: FlowPtr(model.FlowHarvestWindow), Data: map[string]any{"harvest_crop": "beans"}}, now)

		_, data, ok := Previous(b)
		require.True(t, ok)
		assert.NotContains(t, data, PrevKey)
	})

	t.Run("unknown flow falls back to menu", func(t *testing.T) {
		next := Apply(model.NewSession(now), Patch{Flow: FlowPtr(model.Flow("bogus"))}, now)
		assert.Equal(t, model.FlowMenu, next.Flow)
	})

	t.Run("replace data drops unrelated keys", func(t *testing.T) {
		cur := model.NewSession(now)
		cur.Data = map[string]any{"a": "1", "b": "2"}

		next := Apply(cur, Patch{Data: map[string]any{"c": "3"}, ReplaceData: true}, now)

		assert.NotContains(t, next.Data, "a")
		assert.Equal(t, "3", next.Data["c"])
	})

	t.Run("sets and clears user", func(t *testing.T) {
		user := &model.SessionUser{ID: "u1", Name: "Ana"}
		withUser := Apply(model.NewSession(now), Patch{User: user}, now)
		require.NotNil(t, withUser.User)
		assert.Equal(t, "u1", withUser.User.ID)

		cleared := Apply(withUser, Patch{ClearUser: true}, now)
		assert.Nil(t, cleared.User)
	})

	t.Run("stamps updated at", func(t *testing.T) {
		later := now.Add(time.Minute)
		next := Apply(model.NewSession(now), Patch{}, later)
		assert.Equal(t, later, next.UpdatedAt)
	})
}

func TestUndoPatch(t *testing.T) {
	now := time.Now()

	t.Run("restores snapshot exactly once", func(t *testing.T) {
		cur := model.NewSession(now)
		cur.Flow = model.FlowProductPrice
		cur.Data = map[string]any{"product_name": "Maize"}

		advanced := Apply(cur, Patch{
			Flow: FlowPtr(model.FlowProductQuantity),
			Data: map[string]any{"product_price": 10.0},
		}, now)

		undo, ok := UndoPatch(advanced)
		require.True(t, ok)
		restored := Apply(advanced, undo, now)

		assert.Equal(t, model.FlowProductPrice, restored.Flow)
		assert.Equal(t, map[string]any{"product_name": "Maize"}, restored.Data)

		_, ok = UndoPatch(restored)
		assert.False(t, ok)
	})

	t.Run("no snapshot means nothing to undo", func(t *testing.T) {
		_, ok := UndoPatch(model.NewSession(now))
		assert.False(t, ok)
	})
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// Both backends must produce the same sessions for the same sequence of patches.
func TestStoreContract(t *testing.T) {
	_, client := newTestRedis(t)

	backends := map[string]Store{
		"memory": NewMemoryStore(time.Hour),
		"redis":  NewRedisStore(client, time.Hour, nil),
	}

	steps := []Patch{
		{Flow: FlowPtr(model.FlowProductName)},
		{Flow: FlowPtr(model.FlowProductCategory), Data: map[string]any{"product_name": "Maize"}},
		{Data: map[string]any{"page_orders": 1}},
		{Data: map[string]any{"product_photos": []string{"a", "b"}}},
		{Data: map[string]any{"page_orders": nil}},
	}

	results := map[string]model.Session{}
	for name, store := range backends {
		ctx := context.Background()
		var sess model.Session
		for _, p := range steps {
			var err error
			sess, err = store.Set(ctx, "15550001111", p)
			require.NoError(t, err, name)
		}
		got := store.Get(ctx, "15550001111")
		assert.Equal(t, sess.Flow, got.Flow, name)
		assert.Equal(t, sess.Data, got.Data, name)
		results[name] = got
	}

	assert.Equal(t, results["memory"].Flow, results["redis"].Flow)
	assert.Equal(t, results["memory"].Data, results["redis"].Data)
}

package cart_test

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/internal/cart"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
	"github.com/shashiranjanraj/sofreh/pkg/testkit"
)

func food(id int, price float64) models.Food {
	return models.Food{ID: id, Name: "food", Price: models.Price(price)}
}

func discounted(id int, price float64, percent int, discountedPrice float64) models.Food {
	return models.Food{
		ID:              id,
		Name:            "food",
		Price:           models.Price(price),
		DiscountPercent: percent,
		DiscountedPrice: models.Price(discountedPrice),
	}
}

// ─── Anonymous mode ───────────────────────────────────────────────────────────

func TestAnonymous_AddAggregatesByFood(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	s := cart.NewStore()
	s.Load(ctx)

	require.NoError(t, s.Add(ctx, food(7, 100), 1))
	require.NoError(t, s.Add(ctx, food(7, 100), 2))

	lines := s.Lines()
	require.Len(t, lines, 1, "same food must stay one line")
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAnonymous_DecrementAtOneEqualsFullRemove(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, food(7, 100), 1))

	require.NoError(t, s.Remove(ctx, 7, false))
	assert.Equal(t, 0, s.Len(), "quantity 1 + decrement must drop the line")
}

func TestAnonymous_RemoveAbsentIsNoop(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, food(7, 100), 2))

	require.NoError(t, s.Remove(ctx, 999, true))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 200.0, s.Total())
}

func TestAnonymous_FullRemoveDropsWholeLine(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, food(7, 100), 5))

	require.NoError(t, s.Remove(ctx, 7, true))
	assert.Equal(t, 0, s.Len())
}

func TestTotal_UsesDiscountedPriceWhenDiscounted(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, discounted(1, 10000, 20, 8000), 3))

	assert.Equal(t, 24000.0, s.Total())
}

func TestTotal_OrderOfAddsDoesNotMatter(t *testing.T) {
	ctx := context.Background()

	foods := []models.Food{
		food(1, 120),
		discounted(2, 500, 10, 450),
		food(3, 75),
		food(4, 990),
	}
	quantities := []int{2, 1, 4, 3}

	totals := make([]float64, 0, 3)
	for trial := 0; trial < 3; trial++ {
		testkit.TempDataDir(t)
		s := cart.NewStore()
		s.Load(ctx)

		order := rand.Perm(len(foods))
		for _, i := range order {
			require.NoError(t, s.Add(ctx, foods[i], quantities[i]))
		}
		totals = append(totals, s.Total())
	}

	assert.Equal(t, totals[0], totals[1])
	assert.Equal(t, totals[1], totals[2])
}

func TestAnonymous_PersistsAcrossStores(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, food(7, 100), 2))
	require.NoError(t, s.Add(ctx, food(9, 50), 1))

	// A fresh store sees the same cart, like a new process would.
	reloaded := cart.NewStore()
	reloaded.Load(ctx)
	assert.Equal(t, 2, reloaded.Len())
	assert.Equal(t, 250.0, reloaded.Total())
}

func TestLoad_CorruptDocumentFallsBackToEmpty(t *testing.T) {
	testkit.TempDataDir(t)
	require.NoError(t, storage.Put(cart.Document, []byte("{not json")))

	s := cart.NewStore()
	s.Load(context.Background())
	assert.Equal(t, 0, s.Len())
}

// ─── Authenticated mode ───────────────────────────────────────────────────────

func TestAuthenticated_LoadAdoptsServerCart(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "access-1", "refresh-1")

	testkit.Install(t, testkit.Stub{
		Method: "GET", Path: "/cart/",
		Body: `{"items":[{"id":11,"food":{"id":7,"name":"kebab","price":"12000","discount_percent":0},"quantity":2}]}`,
	})

	s := cart.NewStore()
	s.Load(context.Background())

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Food.ID)
	assert.Equal(t, 11, lines[0].LineID)
	assert.Equal(t, 24000.0, s.Total())
}

func TestAuthenticated_AddPostsAndAdoptsResponse(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "access-1", "refresh-1")

	tr := testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/cart/", Body: `[]`},
		testkit.Stub{
			Method: "POST", Path: "/cart/add/",
			Body: `[{"id":1,"food":{"id":7,"name":"kebab","price":100},"quantity":3}]`,
		},
	)

	ctx := context.Background()
	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, food(7, 100), 3))

	assert.Equal(t, 300.0, s.Total())

	calls := tr.Calls()
	require.Len(t, calls, 2)
	assert.JSONEq(t, `{"food_id":7,"quantity":3}`, calls[1].Body)
}

func TestAuthenticated_RemoveUsesDecrementOrDelete(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "access-1", "refresh-1")

	tr := testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/cart/decrement/", Body: `[]`},
		testkit.Stub{Method: "DELETE", Path: "/cart/remove/", Body: `[]`},
	)

	ctx := context.Background()
	s := cart.NewStore()
	require.NoError(t, s.Remove(ctx, 7, false))
	require.NoError(t, s.Remove(ctx, 7, true))
	tr.AssertAllConsumed(t)
}

// ─── Merge ────────────────────────────────────────────────────────────────────

func TestMerge_ReplaysLocalLinesThenDeletesDocument(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	// Build a guest cart first.
	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, food(7, 100), 2))
	require.NoError(t, s.Add(ctx, food(9, 50), 1))

	// Then log in.
	testkit.SeedCredentials(t, "access-1", "refresh-1")

	tr := testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/cart/add/", Body: `[]`, Repeat: 1},
		testkit.Stub{
			Method: "GET", Path: "/cart/",
			Body: `[{"food":{"id":7,"price":100},"quantity":2},{"food":{"id":9,"price":50},"quantity":1}]`,
		},
	)

	require.NoError(t, s.Merge(ctx))

	assert.Equal(t, 2, tr.CallCount("POST", "/cart/add/"), "one add per local line")
	assert.False(t, storage.Exists(cart.Document), "local document must be gone after merge")
	assert.Equal(t, 250.0, s.Total())
}

func TestMerge_RequiresLogin(t *testing.T) {
	testkit.TempDataDir(t)

	s := cart.NewStore()
	assert.Error(t, s.Merge(context.Background()))
}

func TestDocumentShape(t *testing.T) {
	testkit.TempDataDir(t)
	ctx := context.Background()

	s := cart.NewStore()
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, food(7, 100), 2))

	raw, err := storage.Get(cart.Document)
	require.NoError(t, err)

	var doc []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 1)
	assert.Contains(t, string(raw), `"quantity":2`)
}

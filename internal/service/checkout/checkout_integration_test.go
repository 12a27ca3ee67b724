package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techstore/internal/pricing"
	cartrepo "techstore/internal/repository/cart"
	orderrepo "techstore/internal/repository/order"
	"techstore/internal/testpg"
)

func TestCheckoutPostgres_PlaceThenInsufficient(t *testing.T) {
	ctx := context.Background()
	pool := testpg.Pool(ctx, t)

	customerID := testpg.InsertCustomer(ctx, t, pool, "alice")
	testpg.InsertProduct(ctx, t, pool, "P1", "100", 10)
	carts := cartrepo.NewPostgres(pool)
	require.NoError(t, carts.AddLine(ctx, customerID, "P1", 3))

	svc := New(orderrepo.NewPostgres(pool, nil), pricing.DefaultPolicy(), 0)
	in := baseInput(Item{ProductID: "P1", Quantity: 3})
	in.CustomerID = customerID

	rec, err := svc.Checkout(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 7, testpg.Quantity(ctx, t, pool, "P1"))
	assert.Equal(t, "300", rec.Subtotal.String())
	assert.Equal(t, "0", rec.Discount.String())
	assert.Equal(t, "300", rec.Total.String())
	assert.Equal(t, 0, testpg.Count(ctx, t, pool, "cart_lines"))
	assert.Equal(t, 1, testpg.Count(ctx, t, pool, "outbox"))

	stored, err := svc.Order(ctx, customerID, rec.OrderID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "100", stored.Items[0].UnitPrice.String())
	assert.Equal(t, rec.IntendedShipmentDate, stored.IntendedShipmentDate)

	in.Items = []Item{{ProductID: "P1", Quantity: 8}}
	_, err = svc.Checkout(ctx, in)
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, 7, stock.Remaining)
	assert.Equal(t, 7, testpg.Quantity(ctx, t, pool, "P1"))
	assert.Equal(t, 1, testpg.Count(ctx, t, pool, "orders"))
	assert.Equal(t, 1, testpg.Count(ctx, t, pool, "order_lines"))
}

func TestCheckoutPostgres_FailureRollsBackEarlierLines(t *testing.T) {
	ctx := context.Background()
	pool := testpg.Pool(ctx, t)

	customerID := testpg.InsertCustomer(ctx, t, pool, "bob")
	testpg.InsertProduct(ctx, t, pool, "A1", "10", 5)
	testpg.InsertProduct(ctx, t, pool, "B1", "10", 1)

	svc := New(orderrepo.NewPostgres(pool, nil), pricing.DefaultPolicy(), 0)
	in := baseInput(Item{ProductID: "A1", Quantity: 2}, Item{ProductID: "B1", Quantity: 2})
	in.CustomerID = customerID

	_, err := svc.Checkout(ctx, in)
	require.Error(t, err)
	assert.Equal(t, 5, testpg.Quantity(ctx, t, pool, "A1"))
	assert.Equal(t, 1, testpg.Quantity(ctx, t, pool, "B1"))
	assert.Equal(t, 0, testpg.Count(ctx, t, pool, "orders"))
	assert.Equal(t, 0, testpg.Count(ctx, t, pool, "order_lines"))
	assert.Equal(t, 0, testpg.Count(ctx, t, pool, "outbox"))
}

func TestCheckoutPostgres_ConcurrentOversell(t *testing.T) {
	ctx := context.Background()
	pool := testpg.Pool(ctx, t)

	customerID := testpg.InsertCustomer(ctx, t, pool, "carol")
	testpg.InsertProduct(ctx, t, pool, "HOT", "50", 10)
	svc := New(orderrepo.NewPostgres(pool, nil), pricing.DefaultPolicy(), 0)

	const workers = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := baseInput(Item{ProductID: "HOT", Quantity: 3})
			in.CustomerID = customerID
			_, err := svc.Checkout(ctx, in)
			if err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
				return
			}
			var stock *InsufficientStockError
			assert.ErrorAs(t, err, &stock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, placed)
	assert.Equal(t, 1, testpg.Quantity(ctx, t, pool, "HOT"))
	assert.Equal(t, 3, testpg.Count(ctx, t, pool, "orders"))
}

func TestCheckoutPostgres_IdempotentResubmission(t *testing.T) {
	ctx := context.Background()
	pool := testpg.Pool(ctx, t)

	customerID := testpg.InsertCustomer(ctx, t, pool, "dave")
	testpg.InsertProduct(ctx, t, pool, "P1", "20", 10)
	svc := New(orderrepo.NewPostgres(pool, nil), pricing.DefaultPolicy(), 0)

	in := baseInput(Item{ProductID: "P1", Quantity: 1})
	in.CustomerID = customerID
	in.IdempotencyKey = "same-key"

	var wg sync.WaitGroup
	ids := make([]int64, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := svc.Checkout(ctx, in)
			if assert.NoError(t, err) {
				ids[i] = rec.OrderID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 9, testpg.Quantity(ctx, t, pool, "P1"))
	assert.Equal(t, 1, testpg.Count(ctx, t, pool, "orders"))
}

func TestCheckoutPostgres_UnknownCustomer(t *testing.T) {
	ctx := context.Background()
	pool := testpg.Pool(ctx, t)
	testpg.InsertProduct(ctx, t, pool, "P1", "20", 10)

	svc := New(orderrepo.NewPostgres(pool, nil), pricing.DefaultPolicy(), 0)
	in := baseInput(Item{ProductID: "P1", Quantity: 1})
	in.CustomerID = 424242

	_, err := svc.Checkout(ctx, in)
	require.ErrorIs(t, err, ErrUnknownCustomer)
	assert.Equal(t, 10, testpg.Quantity(ctx, t, pool, "P1"))
}

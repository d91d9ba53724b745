package inventorysvc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest(t *testing.T) *Service {
	t.Helper()

	s := New(map[int64]StockEntry{
		1: {Name: "MacBook Pro", Stock: 10},
		2: {Name: "iPhone", Stock: 3},
	})
	s.sleep = func(time.Duration) {}

	return s
}

func totalStock(t *testing.T, s *Service) int {
	t.Helper()

	levels, _ := s.Stock()
	total := 0
	for _, l := range levels {
		total += l.Stock
	}
	return total
}

func TestCheck(t *testing.T) {
	s := setupServiceTest(t)

	available, items := s.Check(context.Background(), []Item{
		{ProductID: 1, Quantity: 5},
		{ProductID: 2, Quantity: 4},
		{ProductID: 9, Quantity: 1},
	})

	assert.False(t, available)
	require.Len(t, items, 3)
	assert.True(t, items[0].Available)
	assert.False(t, items[1].Available)
	assert.False(t, items[2].Available)
	assert.Equal(t, "Unknown", items[2].ProductName)
}

func TestReserve_DecrementsAndRecords(t *testing.T) {
	s := setupServiceTest(t)

	reservation, reserved, err := s.Reserve(context.Background(), "order-1", []Item{
		{ProductID: 1, Quantity: 4},
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Contains(t, reservation.ID, "res-")
	assert.Equal(t, "order-1", reservation.OrderID)
	require.Len(t, reserved, 2)
	assert.Equal(t, 6, reserved[0].RemainingStock)
	assert.Equal(t, 2, reserved[1].RemainingStock)

	_, active := s.Stock()
	assert.Equal(t, 1, active)
}

func TestReserve_NoPartialDecrement(t *testing.T) {
	s := setupServiceTest(t)
	before := totalStock(t, s)

	_, _, err := s.Reserve(context.Background(), "order-1", []Item{
		{ProductID: 1, Quantity: 4},
		{ProductID: 2, Quantity: 99},
	})

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Unavailable, 1)
	assert.Equal(t, int64(2), insufficient.Unavailable[0].ProductID)
	assert.Equal(t, 3, insufficient.Unavailable[0].AvailableStock)

	// The available line must not have been decremented.
	assert.Equal(t, before, totalStock(t, s))
	_, active := s.Stock()
	assert.Zero(t, active)
}

func TestReleaseRestoresStock(t *testing.T) {
	s := setupServiceTest(t)
	before := totalStock(t, s)

	reservation, _, err := s.Reserve(context.Background(), "order-1", []Item{{ProductID: 1, Quantity: 4}})
	require.NoError(t, err)
	assert.Equal(t, before-4, totalStock(t, s))

	orderID, released, err := s.Release(context.Background(), reservation.ID)
	require.NoError(t, err)

	assert.Equal(t, "order-1", orderID)
	require.Len(t, released, 1)
	assert.Equal(t, 10, released[0].NewStock)
	assert.Equal(t, before, totalStock(t, s))
}

func TestRelease_SecondReleaseFails(t *testing.T) {
	s := setupServiceTest(t)

	reservation, _, err := s.Reserve(context.Background(), "order-1", []Item{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)

	_, _, err = s.Release(context.Background(), reservation.ID)
	require.NoError(t, err)

	// A second release must not restore stock again.
	before := totalStock(t, s)
	_, _, err = s.Release(context.Background(), reservation.ID)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, before, totalStock(t, s))
}

func TestRelease_Unknown(t *testing.T) {
	s := setupServiceTest(t)

	_, _, err := s.Release(context.Background(), "res-unknown")

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSimulateOutOfStock_OneShot(t *testing.T) {
	s := setupServiceTest(t)
	s.SimulateOutOfStock()

	available, items := s.Check(context.Background(), []Item{{ProductID: 1, Quantity: 1}})
	assert.False(t, available)
	require.Len(t, items, 1)
	assert.Equal(t, "Out of stock (simulated)", items[0].Reason)

	// The flag is consumed after one check.
	available, _ = s.Check(context.Background(), []Item{{ProductID: 1, Quantity: 1}})
	assert.True(t, available)
}

func TestSimulateSlow_OneShot(t *testing.T) {
	s := setupServiceTest(t)

	var slept time.Duration
	s.sleep = func(d time.Duration) { slept = d }

	s.SimulateSlow()
	s.Check(context.Background(), []Item{{ProductID: 1, Quantity: 1}})
	assert.Equal(t, slowOperationDelay, slept)

	slept = 0
	s.Check(context.Background(), []Item{{ProductID: 1, Quantity: 1}})
	assert.Zero(t, slept)
}

func TestReset(t *testing.T) {
	s := setupServiceTest(t)
	s.SimulateOutOfStock()
	s.SimulateSlow()

	s.ResetSimulations()

	available, _ := s.Check(context.Background(), []Item{{ProductID: 1, Quantity: 1}})
	assert.True(t, available)
}

func TestReserve_ConcurrentConservation(t *testing.T) {
	s := New(map[int64]StockEntry{1: {Name: "MacBook Pro", Stock: 10}})
	s.sleep = func(time.Duration) {}

	var wg sync.WaitGroup
	succeeded := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r, _, err := s.Reserve(context.Background(), "o", []Item{{ProductID: 1, Quantity: 1}}); err == nil {
				succeeded <- r.ID
			}
		}()
	}
	wg.Wait()
	close(succeeded)

	var ids []string
	for id := range succeeded {
		ids = append(ids, id)
	}
	require.Len(t, ids, 10)
	assert.Zero(t, totalStock(t, s))

	for _, id := range ids {
		_, _, err := s.Release(context.Background(), id)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, totalStock(t, s))
}

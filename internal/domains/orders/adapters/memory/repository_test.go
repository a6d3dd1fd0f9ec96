package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
)

func seedOrder(customerID int64) *domain.Order {
	return &domain.Order{
		CustomerID: customerID,
		Lines: []domain.Line{
			{ArticleID: 1, Quantity: 2},
			{ArticleID: 2, Quantity: 1},
		},
	}
}

func TestInsert_AssignsOrderAndLineIDs(t *testing.T) {
	repo := NewRepository()
	created, err := repo.Insert(context.Background(), seedOrder(7))
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.False(t, created.CreatedAt.IsZero())
	for _, line := range created.Lines {
		require.NotZero(t, line.ID)
	}
}

func TestGetByID_DepthSelectsDeliveries(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, seedOrder(7))
	require.NoError(t, err)
	_, err = repo.InsertDelivery(ctx, &domain.Delivery{Number: "D-100", OrderIDs: []int64{created.ID}})
	require.NoError(t, err)

	plain, err := repo.GetByID(ctx, created.ID, ports.FetchOrderOnly)
	require.NoError(t, err)
	require.Empty(t, plain.Deliveries)

	loaded, err := repo.GetByID(ctx, created.ID, ports.FetchWithDeliveries)
	require.NoError(t, err)
	require.Len(t, loaded.Deliveries, 1)
	require.Equal(t, "D-100", loaded.Deliveries[0].Number)

	_, err = repo.GetByID(ctx, 42, ports.FetchOrderOnly)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListByCustomer_FiltersByOwner(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.Insert(ctx, seedOrder(1))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, seedOrder(1))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, seedOrder(2))
	require.NoError(t, err)

	orders, err := repo.ListByCustomer(ctx, 1, ports.FetchOrderOnly)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	none, err := repo.ListByCustomer(ctx, 99, ports.FetchOrderOnly)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestCustomerIDByOrder(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, seedOrder(5))
	require.NoError(t, err)

	customerID, err := repo.CustomerIDByOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), customerID)

	_, err = repo.CustomerIDByOrder(ctx, 42)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCrossContextIndexes(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	first, err := repo.Insert(ctx, seedOrder(1))
	require.NoError(t, err)
	second, err := repo.Insert(ctx, seedOrder(1))
	require.NoError(t, err)

	require.Equal(t, []int64{first.ID, second.ID}, repo.OrderIDsFor(1))
	require.Empty(t, repo.OrderIDsFor(99))

	// Article 1 appears with quantity 2 in both orders.
	require.Equal(t, int64(4), repo.UnitsOrderedFor(1))
	require.Equal(t, int64(0), repo.UnitsOrderedFor(77))
}

func TestFindDeliveriesByNumber(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	created, err := repo.Insert(ctx, seedOrder(1))
	require.NoError(t, err)
	_, err = repo.InsertDelivery(ctx, &domain.Delivery{Number: "D-200", OrderIDs: []int64{created.ID}})
	require.NoError(t, err)

	deliveries, err := repo.FindDeliveriesByNumber(ctx, "D-200")
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.Equal(t, []int64{created.ID}, deliveries[0].OrderIDs)

	none, err := repo.FindDeliveriesByNumber(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, none)
}

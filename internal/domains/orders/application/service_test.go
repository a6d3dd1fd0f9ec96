package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	customersmemory "github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/memory"
	customersapp "github.com/shopkit/go-shop-api-server/internal/domains/customers/application"
	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	ordersmemory "github.com/shopkit/go-shop-api-server/internal/domains/orders/adapters/memory"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
)

func newTestService(t *testing.T) (*Service, *customersdomain.Customer) {
	t.Helper()
	customerRepo := customersmemory.NewRepository()
	orderRepo := ordersmemory.NewRepository()
	customerRepo.BindOrders(orderRepo)
	customers := customersapp.NewService(customerRepo, nil, nil, nil)

	created, err := customers.Create(context.Background(), &customersdomain.Customer{
		Kind:            customersdomain.KindPrivate,
		LastName:        "Miller",
		Email:           "anna@example.com",
		Since:           time.Now().Add(-24 * time.Hour),
		Password:        "secret",
		PasswordConfirm: "secret",
		TermsAccepted:   true,
		Address:         &customersdomain.Address{City: "Springfield"},
	})
	require.NoError(t, err)

	return NewService(orderRepo, customers, nil), created
}

func TestCreate_AllocatesFreshIDs(t *testing.T) {
	svc, customer := newTestService(t)
	ctx := context.Background()

	// Replayed ids from a serialized payload must not survive persistence.
	order := &domain.Order{
		ID: 99,
		Lines: []domain.Line{
			{ID: 77, ArticleID: 1, Quantity: 2},
			{ID: 78, ArticleID: 2, Quantity: 1},
		},
	}
	created, err := svc.Create(ctx, order, customer)
	require.NoError(t, err)
	require.NotEqual(t, int64(99), created.ID)
	require.Equal(t, customer.ID, created.CustomerID)
	require.Len(t, created.Lines, 2)
	for _, line := range created.Lines {
		require.NotZero(t, line.ID)
		require.NotEqual(t, int64(77), line.ID)
		require.NotEqual(t, int64(78), line.ID)
	}
}

func TestCreate_NilInputsAreSilentNoOps(t *testing.T) {
	svc, customer := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, nil, customer)
	require.NoError(t, err)
	require.Nil(t, created)

	created, err = svc.Create(ctx, &domain.Order{Lines: []domain.Line{{ArticleID: 1, Quantity: 1}}}, nil)
	require.NoError(t, err)
	require.Nil(t, created)
}

func TestCreate_MissingCustomerIsNil(t *testing.T) {
	svc, _ := newTestService(t)
	order := &domain.Order{Lines: []domain.Line{{ArticleID: 1, Quantity: 1}}}
	created, err := svc.Create(context.Background(), order, &customersdomain.Customer{ID: 42})
	require.NoError(t, err)
	require.Nil(t, created)
}

func TestCreate_RejectsEmptyOrder(t *testing.T) {
	svc, customer := newTestService(t)
	_, err := svc.Create(context.Background(), &domain.Order{}, customer)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrNoLines)
}

func TestCreateForUsername_ResolvesCustomer(t *testing.T) {
	svc, customer := newTestService(t)
	ctx := context.Background()

	order := &domain.Order{Lines: []domain.Line{{ArticleID: 1, Quantity: 1}}}
	created, err := svc.CreateForUsername(ctx, order, "1")
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, customer.ID, created.CustomerID)

	missing, err := svc.CreateForUsername(ctx, &domain.Order{Lines: []domain.Line{{ArticleID: 1, Quantity: 1}}}, "nobody")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestFindByID_MissingIsNil(t *testing.T) {
	svc, _ := newTestService(t)
	order, err := svc.FindByID(context.Background(), 42, ports.FetchOrderOnly)
	require.NoError(t, err)
	require.Nil(t, order)
}

func TestFindByCustomer_ListsOwnOrders(t *testing.T) {
	svc, customer := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, &domain.Order{Lines: []domain.Line{{ArticleID: 1, Quantity: 1}}}, customer)
		require.NoError(t, err)
	}
	orders, err := svc.FindByCustomer(ctx, customer, ports.FetchOrderOnly)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	orders, err = svc.FindByCustomer(ctx, nil, ports.FetchOrderOnly)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestFindCustomerByOrder_ResolvesOwner(t *testing.T) {
	svc, customer := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &domain.Order{Lines: []domain.Line{{ArticleID: 1, Quantity: 1}}}, customer)
	require.NoError(t, err)

	owner, err := svc.FindCustomerByOrder(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, owner)
	require.Equal(t, customer.ID, owner.ID)

	owner, err = svc.FindCustomerByOrder(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, owner)
}

func TestDeliveries_RoundTrip(t *testing.T) {
	svc, customer := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, &domain.Order{Lines: []domain.Line{{ArticleID: 1, Quantity: 1}}}, customer)
	require.NoError(t, err)
	second, err := svc.Create(ctx, &domain.Order{Lines: []domain.Line{{ArticleID: 2, Quantity: 3}}}, customer)
	require.NoError(t, err)

	created, err := svc.CreateDelivery(ctx, &domain.Delivery{ID: 5, Number: "D-2026-001", OrderIDs: []int64{first.ID, second.ID}})
	require.NoError(t, err)
	require.NotEqual(t, int64(5), created.ID)

	deliveries, err := svc.FindDeliveries(ctx, "D-2026-001")
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	require.ElementsMatch(t, []int64{first.ID, second.ID}, deliveries[0].OrderIDs)

	withDeliveries, err := svc.FindByID(ctx, first.ID, ports.FetchWithDeliveries)
	require.NoError(t, err)
	require.Len(t, withDeliveries.Deliveries, 1)
	require.Equal(t, "D-2026-001", withDeliveries.Deliveries[0].Number)
}

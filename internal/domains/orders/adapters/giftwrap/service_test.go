package giftwrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	ordersdomain "github.com/shopkit/go-shop-api-server/internal/domains/orders/domain"
	ordersports "github.com/shopkit/go-shop-api-server/internal/domains/orders/ports"
)

type fakeOrderService struct {
	createErr error
	createNil bool
	calls     []string
}

func (f *fakeOrderService) FindByID(_ context.Context, id int64, _ ordersports.FetchDepth) (*ordersdomain.Order, error) {
	f.calls = append(f.calls, "FindByID")
	return &ordersdomain.Order{ID: id}, nil
}

func (f *fakeOrderService) FindByCustomer(_ context.Context, _ *customersdomain.Customer, _ ordersports.FetchDepth) ([]*ordersdomain.Order, error) {
	f.calls = append(f.calls, "FindByCustomer")
	return nil, nil
}

func (f *fakeOrderService) FindCustomerByOrder(_ context.Context, _ int64) (*customersdomain.Customer, error) {
	f.calls = append(f.calls, "FindCustomerByOrder")
	return nil, nil
}

func (f *fakeOrderService) Create(_ context.Context, order *ordersdomain.Order, _ *customersdomain.Customer) (*ordersdomain.Order, error) {
	f.calls = append(f.calls, "Create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createNil {
		return nil, nil
	}
	order.ID = 1
	return order, nil
}

func (f *fakeOrderService) CreateForUsername(ctx context.Context, order *ordersdomain.Order, _ string) (*ordersdomain.Order, error) {
	f.calls = append(f.calls, "CreateForUsername")
	return f.Create(ctx, order, nil)
}

func (f *fakeOrderService) FindDeliveries(_ context.Context, _ string) ([]*ordersdomain.Delivery, error) {
	f.calls = append(f.calls, "FindDeliveries")
	return nil, nil
}

func (f *fakeOrderService) CreateDelivery(_ context.Context, delivery *ordersdomain.Delivery) (*ordersdomain.Delivery, error) {
	f.calls = append(f.calls, "CreateDelivery")
	return delivery, nil
}

func TestCreate_AppliesWrappingAfterDelegation(t *testing.T) {
	inner := &fakeOrderService{}
	var wrapped []int64
	svc := New(inner, WithWrapper(func(order *ordersdomain.Order) {
		wrapped = append(wrapped, order.ID)
	}))

	created, err := svc.Create(context.Background(), &ordersdomain.Order{}, &customersdomain.Customer{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, []int64{1}, wrapped)
}

func TestCreate_NoWrappingOnFailure(t *testing.T) {
	inner := &fakeOrderService{createErr: errors.New("boom")}
	var wrapped int
	svc := New(inner, WithWrapper(func(*ordersdomain.Order) { wrapped++ }))

	_, err := svc.Create(context.Background(), &ordersdomain.Order{}, &customersdomain.Customer{ID: 1})
	require.Error(t, err)
	require.Zero(t, wrapped)
}

func TestCreate_NoWrappingOnSilentNoOp(t *testing.T) {
	inner := &fakeOrderService{createNil: true}
	var wrapped int
	svc := New(inner, WithWrapper(func(*ordersdomain.Order) { wrapped++ }))

	created, err := svc.Create(context.Background(), &ordersdomain.Order{}, nil)
	require.NoError(t, err)
	require.Nil(t, created)
	require.Zero(t, wrapped)
}

func TestCreateForUsername_AppliesWrapping(t *testing.T) {
	inner := &fakeOrderService{}
	var wrapped int
	svc := New(inner, WithWrapper(func(*ordersdomain.Order) { wrapped++ }))

	_, err := svc.CreateForUsername(context.Background(), &ordersdomain.Order{}, "1")
	require.NoError(t, err)
	require.Equal(t, 1, wrapped)
}

func TestReads_ForwardUnchanged(t *testing.T) {
	inner := &fakeOrderService{}
	svc := New(inner)

	_, err := svc.FindByID(context.Background(), 7, ordersports.FetchOrderOnly)
	require.NoError(t, err)
	_, err = svc.FindDeliveries(context.Background(), "D-1")
	require.NoError(t, err)
	require.Equal(t, []string{"FindByID", "FindDeliveries"}, inner.calls)
}

func TestNew_SatisfiesServiceContract(t *testing.T) {
	var svc ordersports.Service = New(&fakeOrderService{})
	require.NotNil(t, svc)
}

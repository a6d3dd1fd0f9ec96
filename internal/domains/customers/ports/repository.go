package ports

import (
	"context"
	"errors"
	"time"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
)

var (
	ErrNotFound = errors.New("customer not found")
	// ErrEmailTaken is the storage-layer backstop for the email uniqueness
	// invariant; the unique index fires even when the service-level
	// check-then-act races.
	ErrEmailTaken = errors.New("customer email already taken")
	// ErrVersionConflict signals that the stored version differs from the one
	// the caller holds; the update was not applied.
	ErrVersionConflict = errors.New("customer version conflict")
)

// FetchDepth selects which related collections are loaded with a customer.
// Unknown values behave like FetchCustomerOnly.
type FetchDepth int

const (
	FetchCustomerOnly FetchDepth = iota
	FetchWithOrders
	FetchWithContracts
)

// OrderBy selects the ordering of list results.
type OrderBy int

const (
	Unordered OrderBy = iota
	OrderByID
)

// CustomerView couples a customer with the eagerly loaded relations selected
// by the fetch depth. Order ids are referential: orders are not owned by the
// customer and never cascade.
type CustomerView struct {
	Customer  *domain.Customer
	OrderIDs  []int64
	Contracts []domain.MaintenanceContract
}

// Repository persists customers, their owned address and file, and their
// maintenance contracts.
type Repository interface {
	GetByID(ctx context.Context, id int64, depth FetchDepth) (*CustomerView, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context, depth FetchDepth, order OrderBy) ([]*CustomerView, error)
	FindByLastName(ctx context.Context, lastName string, depth FetchDepth) ([]*CustomerView, error)
	FindByPostalCode(ctx context.Context, postalCode string) ([]*domain.Customer, error)
	FindBySince(ctx context.Context, since time.Time) ([]*domain.Customer, error)
	FindByGender(ctx context.Context, gender domain.Gender) ([]*domain.Customer, error)
	FindIDsByPrefix(ctx context.Context, prefix string, limit int) ([]int64, error)
	FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]*domain.Customer, error)
	FindLastNamesByPrefix(ctx context.Context, prefix string, limit int) ([]string, error)

	// Insert assigns a fresh id, sets the version to domain.FirstVersion and
	// stamps both timestamps. ErrEmailTaken enforces the unique constraint.
	Insert(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	// Update applies the change only when the supplied version matches the
	// stored one; it restamps UpdatedAt and increments the version atomically.
	// ErrNotFound and ErrVersionConflict are distinguished.
	Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	Delete(ctx context.Context, id int64) error

	// SaveFile creates the customer's attachment or overwrites it in place;
	// a customer never owns more than one file.
	SaveFile(ctx context.Context, customerID int64, file *domain.File) (*domain.File, error)

	ContractsByCustomer(ctx context.Context, customerID int64) ([]domain.MaintenanceContract, error)
	InsertContract(ctx context.Context, contract *domain.MaintenanceContract) (*domain.MaintenanceContract, error)
}

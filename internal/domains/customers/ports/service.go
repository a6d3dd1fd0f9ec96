package ports

import (
	"context"
	"time"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
)

// Service defines the customer use cases exposed to adapters (driving port).
// Lookups report "not found" as a nil result, not an error.
type Service interface {
	FindByID(ctx context.Context, id int64, depth FetchDepth) (*CustomerView, error)
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByUsername(ctx context.Context, username string) (*domain.Customer, error)
	FindAll(ctx context.Context, depth FetchDepth, order OrderBy) ([]*CustomerView, error)
	FindByLastName(ctx context.Context, lastName string, depth FetchDepth) ([]*CustomerView, error)
	FindByPostalCode(ctx context.Context, postalCode string) ([]*domain.Customer, error)
	FindBySince(ctx context.Context, since time.Time) ([]*domain.Customer, error)
	FindByGender(ctx context.Context, gender domain.Gender) ([]*domain.Customer, error)
	FindPrivateAndCorporate(ctx context.Context) ([]*domain.Customer, error)
	FindIDsByPrefix(ctx context.Context, prefix string) ([]int64, error)
	FindByIDPrefix(ctx context.Context, prefix string) ([]*domain.Customer, error)
	FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error)

	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, customer *domain.Customer, passwordChanged bool) (*domain.Customer, error)
	Delete(ctx context.Context, customer *domain.Customer) error
	DeleteByID(ctx context.Context, id int64) error

	SetFile(ctx context.Context, customerID int64, data []byte) (*domain.Customer, error)
	SetFileWithType(ctx context.Context, customer *domain.Customer, data []byte, mimeType string) (*domain.Customer, error)

	FindMaintenanceContracts(ctx context.Context, customerID int64) ([]domain.MaintenanceContract, error)
	CreateMaintenanceContract(ctx context.Context, contract *domain.MaintenanceContract, customer *domain.Customer) (*domain.MaintenanceContract, error)
}

// PasswordEncoder is the one-way credential transform applied before
// persisting a password. Deterministic per input.
type PasswordEncoder interface {
	Encode(plaintext string) string
}

// BlobStore accepts durable write requests for customer attachments.
// Enqueue must not block the caller; delivery happens off the request path and
// failures are reported through the operational log only. The boolean tells
// whether the request was accepted into the queue.
type BlobStore interface {
	Enqueue(filename, mimeType string, data []byte) bool
}

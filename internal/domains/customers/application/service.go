package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
	"github.com/shopkit/go-shop-api-server/internal/events"
	"github.com/shopkit/go-shop-api-server/internal/filestore"
)

// MaxAutocomplete caps every prefix search result.
const MaxAutocomplete = 10

// Service orchestrates the customers bounded context use cases.
type Service struct {
	repo    ports.Repository
	encoder ports.PasswordEncoder
	blobs   ports.BlobStore
	bus     events.Publisher
}

// NewService wires the customer service with its dependencies. The blob store
// and publisher may be nil; attachment persistence and event emission then
// degrade to no-ops.
func NewService(repo ports.Repository, encoder ports.PasswordEncoder, blobs ports.BlobStore, bus events.Publisher) *Service {
	if bus == nil {
		bus = events.NoopPublisher{}
	}
	return &Service{repo: repo, encoder: encoder, blobs: blobs, bus: bus}
}

// FindByID loads a customer with the relations selected by depth.
// A missing customer is a normal nil result.
func (s *Service) FindByID(ctx context.Context, id int64, depth ports.FetchDepth) (*ports.CustomerView, error) {
	view, err := s.repo.GetByID(ctx, id, depth)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	return view, err
}

// FindByEmail resolves the at-most-one customer holding the email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	customer, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	return customer, err
}

// FindByUsername resolves a customer by login name. Usernames are the decimal
// form of the customer id.
func (s *Service) FindByUsername(ctx context.Context, username string) (*domain.Customer, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(username), 10, 64)
	if err != nil {
		return nil, nil
	}
	view, err := s.FindByID(ctx, id, ports.FetchCustomerOnly)
	if err != nil || view == nil {
		return nil, err
	}
	return view.Customer, nil
}

// FindAll lists every customer.
func (s *Service) FindAll(ctx context.Context, depth ports.FetchDepth, order ports.OrderBy) ([]*ports.CustomerView, error) {
	return s.repo.List(ctx, depth, order)
}

// FindByLastName searches case-insensitively by last name.
func (s *Service) FindByLastName(ctx context.Context, lastName string, depth ports.FetchDepth) ([]*ports.CustomerView, error) {
	return s.repo.FindByLastName(ctx, lastName, depth)
}

// FindByPostalCode searches by the owned address's postal code.
func (s *Service) FindByPostalCode(ctx context.Context, postalCode string) ([]*domain.Customer, error) {
	return s.repo.FindByPostalCode(ctx, postalCode)
}

// FindBySince searches by the exact customer-since date.
func (s *Service) FindBySince(ctx context.Context, since time.Time) ([]*domain.Customer, error) {
	return s.repo.FindBySince(ctx, since)
}

// FindByGender searches private customers by gender.
func (s *Service) FindByGender(ctx context.Context, gender domain.Gender) ([]*domain.Customer, error) {
	return s.repo.FindByGender(ctx, gender)
}

// FindPrivateAndCorporate lists customers of both variants.
func (s *Service) FindPrivateAndCorporate(ctx context.Context) ([]*domain.Customer, error) {
	views, err := s.repo.List(ctx, ports.FetchCustomerOnly, ports.Unordered)
	if err != nil {
		return nil, err
	}
	customers := make([]*domain.Customer, 0, len(views))
	for _, view := range views {
		customers = append(customers, view.Customer)
	}
	return customers, nil
}

// FindIDsByPrefix returns candidate ids for autocompletion. A blank prefix
// yields an empty result, never the full table.
func (s *Service) FindIDsByPrefix(ctx context.Context, prefix string) ([]int64, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, nil
	}
	return s.repo.FindIDsByPrefix(ctx, prefix, MaxAutocomplete)
}

// FindByIDPrefix returns customers whose id starts with the prefix.
func (s *Service) FindByIDPrefix(ctx context.Context, prefix string) ([]*domain.Customer, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, nil
	}
	return s.repo.FindByIDPrefix(ctx, prefix, MaxAutocomplete)
}

// FindLastNamesByPrefix returns distinct last names for autocompletion,
// matched case-insensitively.
func (s *Service) FindLastNamesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if strings.TrimSpace(prefix) == "" {
		return nil, nil
	}
	return s.repo.FindLastNamesByPrefix(ctx, prefix, MaxAutocomplete)
}

// Create persists a new customer. The email must be free (case-insensitive),
// the password is hashed at rest, and the CUSTOMER role is granted. A
// CustomerCreated event is emitted after, and only after, the persist
// succeeded.
func (s *Service) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, nil
	}
	if err := customer.Validate(); err != nil {
		return nil, mapError(err)
	}
	existing, err := s.FindByEmail(ctx, customer.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, emailExists(customer.Email)
	}

	s.encodePassword(customer)
	customer.AddRole(domain.RoleCustomer)

	created, err := s.repo.Insert(ctx, customer)
	if err != nil {
		return nil, mapError(err)
	}
	s.bus.Publish(ctx, domain.CustomerCreated{
		CustomerID: created.ID,
		Kind:       created.Kind,
		Email:      created.Email,
		Timestamp:  time.Now(),
	})
	return created, nil
}

// Update merges a detached customer against authoritative storage state.
// The target must still exist, the email must not belong to another customer,
// and the version the caller holds must match the stored one.
func (s *Service) Update(ctx context.Context, customer *domain.Customer, passwordChanged bool) (*domain.Customer, error) {
	if customer == nil {
		return nil, nil
	}

	// The incoming object may be stale; decide against current storage state.
	current, err := s.FindByID(ctx, customer.ID, ports.FetchCustomerOnly)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, concurrentlyDeleted(customer.ID)
	}

	if passwordChanged {
		s.encodePassword(customer)
	} else {
		// The password only changes when the caller re-entered it; otherwise
		// the stored hash stays authoritative and the confirm field mirrors it.
		customer.Password = current.Customer.Password
		customer.PasswordConfirm = current.Customer.Password
	}
	if err := customer.Validate(); err != nil {
		return nil, mapError(err)
	}

	holder, err := s.FindByEmail(ctx, customer.Email)
	if err != nil {
		return nil, err
	}
	if holder != nil && holder.ID != customer.ID {
		return nil, emailExists(customer.Email)
	}

	updated, err := s.repo.Update(ctx, customer)
	switch {
	case errors.Is(err, ports.ErrVersionConflict):
		return nil, optimisticConflict(customer.ID, customer.Version)
	case errors.Is(err, ports.ErrNotFound):
		return nil, concurrentlyDeleted(customer.ID)
	case err != nil:
		return nil, mapError(err)
	}
	// Mirror the stored hash so a repeated no-op update stays valid.
	updated.PasswordConfirm = updated.Password
	return updated, nil
}

// Delete removes a customer. Deletion is blocked while orders reference it;
// the owned address and file are removed along with the customer.
func (s *Service) Delete(ctx context.Context, customer *domain.Customer) error {
	if customer == nil {
		return nil
	}
	return s.DeleteByID(ctx, customer.ID)
}

// DeleteByID removes the customer with the given id, if any.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	view, err := s.FindByID(ctx, id, ports.FetchWithOrders)
	if err != nil {
		return err
	}
	if view == nil {
		// Already gone; deleting a missing customer is not a fault.
		return nil
	}
	if len(view.OrderIDs) > 0 {
		return ErrHasOrders
	}
	return s.repo.Delete(ctx, id)
}

// SetFile attaches an uploaded payload whose MIME type is sniffed from the
// bytes.
func (s *Service) SetFile(ctx context.Context, customerID int64, data []byte) (*domain.Customer, error) {
	view, err := s.FindByID(ctx, customerID, ports.FetchCustomerOnly)
	if err != nil || view == nil {
		return nil, err
	}
	mimeType, err := filestore.DetectMimeType(data)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.attachFile(ctx, view.Customer, data, mimeType); err != nil {
		return nil, err
	}
	return view.Customer, nil
}

// SetFileWithType attaches an uploaded payload with a declared MIME type.
func (s *Service) SetFileWithType(ctx context.Context, customer *domain.Customer, data []byte, mimeType string) (*domain.Customer, error) {
	if customer == nil {
		return nil, nil
	}
	resolved, err := filestore.ParseMimeType(mimeType)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.attachFile(ctx, customer, data, resolved); err != nil {
		return nil, err
	}
	return customer, nil
}

// attachFile commits the single-file metadata first, then hands the blob to
// the asynchronous store. The caller never waits for the blob write and a
// failure there cannot undo the committed metadata.
func (s *Service) attachFile(ctx context.Context, customer *domain.Customer, data []byte, mimeType string) error {
	filename := filestore.Filename(string(customer.Kind), customer.ID, mimeType)

	file := customer.File
	if file == nil {
		file = &domain.File{Filename: filename, MimeType: mimeType, Data: data}
	} else {
		file.Set(data, filename, mimeType)
	}
	saved, err := s.repo.SaveFile(ctx, customer.ID, file)
	if err != nil {
		return err
	}
	customer.File = saved

	if s.blobs != nil {
		s.blobs.Enqueue(saved.Filename, saved.MimeType, saved.Data)
	}
	return nil
}

// FindMaintenanceContracts lists a customer's maintenance contracts.
func (s *Service) FindMaintenanceContracts(ctx context.Context, customerID int64) ([]domain.MaintenanceContract, error) {
	return s.repo.ContractsByCustomer(ctx, customerID)
}

// CreateMaintenanceContract links a new contract to an existing customer.
func (s *Service) CreateMaintenanceContract(ctx context.Context, contract *domain.MaintenanceContract, customer *domain.Customer) (*domain.MaintenanceContract, error) {
	if contract == nil || customer == nil {
		return nil, nil
	}
	view, err := s.FindByID(ctx, customer.ID, ports.FetchCustomerOnly)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, concurrentlyDeleted(customer.ID)
	}
	contract.CustomerID = customer.ID
	return s.repo.InsertContract(ctx, contract)
}

func (s *Service) encodePassword(customer *domain.Customer) {
	if s.encoder == nil {
		customer.PasswordConfirm = customer.Password
		return
	}
	hash := s.encoder.Encode(customer.Password)
	customer.Password = hash
	customer.PasswordConfirm = hash
}

var _ ports.Service = (*Service)(nil)

package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// OrderIndex resolves the referential order ids of a customer. Orders are not
// owned by the customers context, so the index is bound from outside.
type OrderIndex interface {
	OrderIDsFor(customerID int64) []int64
}

// Repository is an in-memory customer persistence adapter. It enforces the
// same invariants as the PostgreSQL adapter: unique email (case-insensitive)
// and version-checked updates.
type Repository struct {
	mu             sync.RWMutex
	customers      map[int64]*domain.Customer
	emails         map[string]int64
	contracts      map[int64]*domain.MaintenanceContract
	nextID         int64
	nextFileID     int64
	nextContractID int64
	orders         OrderIndex
}

func NewRepository() *Repository {
	return &Repository{
		customers: map[int64]*domain.Customer{},
		emails:    map[string]int64{},
		contracts: map[int64]*domain.MaintenanceContract{},
	}
}

// BindOrders attaches the order index used for fetch-with-orders loads.
func (r *Repository) BindOrders(index OrderIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = index
}

func (r *Repository) GetByID(_ context.Context, id int64, depth ports.FetchDepth) (*ports.CustomerView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.viewLocked(customer, depth), nil
}

func (r *Repository) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneCustomer(r.customers[id]), nil
}

func (r *Repository) List(_ context.Context, depth ports.FetchDepth, order ports.OrderBy) ([]*ports.CustomerView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	views := make([]*ports.CustomerView, 0, len(r.customers))
	for _, customer := range r.customers {
		views = append(views, r.viewLocked(customer, depth))
	}
	if order == ports.OrderByID {
		sort.Slice(views, func(i, j int) bool { return views[i].Customer.ID < views[j].Customer.ID })
	}
	return views, nil
}

func (r *Repository) FindByLastName(_ context.Context, lastName string, depth ports.FetchDepth) ([]*ports.CustomerView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var views []*ports.CustomerView
	for _, customer := range r.customers {
		if strings.EqualFold(customer.LastName, lastName) {
			views = append(views, r.viewLocked(customer, depth))
		}
	}
	return views, nil
}

func (r *Repository) FindByPostalCode(_ context.Context, postalCode string) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Customer
	for _, customer := range r.customers {
		if customer.Address != nil && customer.Address.PostalCode == postalCode {
			result = append(result, cloneCustomer(customer))
		}
	}
	return result, nil
}

func (r *Repository) FindBySince(_ context.Context, since time.Time) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Customer
	for _, customer := range r.customers {
		if customer.Since.Equal(since) {
			result = append(result, cloneCustomer(customer))
		}
	}
	return result, nil
}

func (r *Repository) FindByGender(_ context.Context, gender domain.Gender) ([]*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Customer
	for _, customer := range r.customers {
		if customer.Kind == domain.KindPrivate && customer.Gender == gender {
			result = append(result, cloneCustomer(customer))
		}
	}
	return result, nil
}

func (r *Repository) FindIDsByPrefix(_ context.Context, prefix string, limit int) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.customers))
	for id := range r.customers {
		if strings.HasPrefix(strconv.FormatInt(id, 10), prefix) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return capIDs(ids, limit), nil
}

func (r *Repository) FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]*domain.Customer, error) {
	ids, _ := r.FindIDsByPrefix(ctx, prefix, limit)
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domain.Customer, 0, len(ids))
	for _, id := range ids {
		result = append(result, cloneCustomer(r.customers[id]))
	}
	return result, nil
}

func (r *Repository) FindLastNamesByPrefix(_ context.Context, prefix string, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var names []string
	for _, customer := range r.customers {
		if !strings.HasPrefix(strings.ToLower(customer.LastName), strings.ToLower(prefix)) {
			continue
		}
		if _, ok := seen[customer.LastName]; ok {
			continue
		}
		seen[customer.LastName] = struct{}{}
		names = append(names, customer.LastName)
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (r *Repository) Insert(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := customer.EmailKey()
	if _, taken := r.emails[key]; taken {
		return nil, ports.ErrEmailTaken
	}
	r.nextID++
	now := time.Now()
	stored := cloneCustomer(customer)
	stored.ID = r.nextID
	stored.Version = domain.FirstVersion
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Address != nil && stored.Address.ID == domain.NoID {
		stored.Address.ID = stored.ID
	}
	r.customers[stored.ID] = stored
	r.emails[key] = stored.ID
	return cloneCustomer(stored), nil
}

func (r *Repository) Update(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.customers[customer.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if current.Version != customer.Version {
		return nil, ports.ErrVersionConflict
	}
	key := customer.EmailKey()
	if holder, taken := r.emails[key]; taken && holder != customer.ID {
		return nil, ports.ErrEmailTaken
	}

	stored := cloneCustomer(customer)
	stored.Version = current.Version + 1
	stored.CreatedAt = current.CreatedAt
	stored.UpdatedAt = time.Now()
	stored.File = current.File
	delete(r.emails, current.EmailKey())
	r.customers[stored.ID] = stored
	r.emails[key] = stored.ID
	return cloneCustomer(stored), nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[id]
	if !ok {
		return ports.ErrNotFound
	}
	// Address and file are owned and vanish with the customer.
	delete(r.emails, customer.EmailKey())
	delete(r.customers, id)
	for cid, contract := range r.contracts {
		if contract.CustomerID == id {
			delete(r.contracts, cid)
		}
	}
	return nil
}

func (r *Repository) SaveFile(_ context.Context, customerID int64, file *domain.File) (*domain.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[customerID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if customer.File == nil {
		r.nextFileID++
		customer.File = &domain.File{ID: r.nextFileID}
	}
	customer.File.Set(append([]byte(nil), file.Data...), file.Filename, file.MimeType)
	return cloneFile(customer.File), nil
}

func (r *Repository) ContractsByCustomer(_ context.Context, customerID int64) ([]domain.MaintenanceContract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.contractsLocked(customerID), nil
}

func (r *Repository) InsertContract(_ context.Context, contract *domain.MaintenanceContract) (*domain.MaintenanceContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[contract.CustomerID]; !ok {
		return nil, ports.ErrNotFound
	}
	r.nextContractID++
	stored := *contract
	stored.ID = r.nextContractID
	r.contracts[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (r *Repository) viewLocked(customer *domain.Customer, depth ports.FetchDepth) *ports.CustomerView {
	view := &ports.CustomerView{Customer: cloneCustomer(customer)}
	switch depth {
	case ports.FetchWithOrders:
		if r.orders != nil {
			view.OrderIDs = r.orders.OrderIDsFor(customer.ID)
		}
	case ports.FetchWithContracts:
		view.Contracts = r.contractsLocked(customer.ID)
	}
	return view
}

func (r *Repository) contractsLocked(customerID int64) []domain.MaintenanceContract {
	var result []domain.MaintenanceContract
	for _, contract := range r.contracts {
		if contract.CustomerID == customerID {
			result = append(result, *contract)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func cloneCustomer(customer *domain.Customer) *domain.Customer {
	if customer == nil {
		return nil
	}
	clone := *customer
	if customer.Address != nil {
		address := *customer.Address
		clone.Address = &address
	}
	clone.Roles = append([]domain.Role(nil), customer.Roles...)
	clone.File = cloneFile(customer.File)
	return &clone
}

func cloneFile(file *domain.File) *domain.File {
	if file == nil {
		return nil
	}
	clone := *file
	clone.Data = append([]byte(nil), file.Data...)
	return &clone
}

func capIDs(ids []int64, limit int) []int64 {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

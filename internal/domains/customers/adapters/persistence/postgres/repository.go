package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists customers in PostgreSQL using GORM. The email_lower
// unique index is the storage-level backstop for email uniqueness; the
// version column carries the optimistic-concurrency token.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&customerRecord{}, &addressRecord{}, &fileRecord{}, &contractRecord{})
	}
	return repo
}

type customerRecord struct {
	ID         int64          `gorm:"primaryKey;column:id"`
	Version    int            `gorm:"column:version"`
	Kind       string         `gorm:"column:kind;type:varchar(1)"`
	LastName   string         `gorm:"column:last_name;index"`
	FirstName  string         `gorm:"column:first_name"`
	Category   int16          `gorm:"column:category"`
	Discount   float64        `gorm:"column:discount"`
	Revenue    float64        `gorm:"column:revenue"`
	Since      time.Time      `gorm:"column:since"`
	Email      string         `gorm:"column:email"`
	EmailLower string         `gorm:"column:email_lower;uniqueIndex"`
	Newsletter bool           `gorm:"column:newsletter"`
	Password   string         `gorm:"column:password_hash"`
	Gender     string         `gorm:"column:gender;type:varchar(8)"`
	Remarks    string         `gorm:"column:remarks;type:text"`
	Roles      pq.StringArray `gorm:"column:roles;type:text[]"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

type addressRecord struct {
	ID         int64  `gorm:"primaryKey;column:id"`
	CustomerID int64  `gorm:"column:customer_id;uniqueIndex"`
	Street     string `gorm:"column:street"`
	HouseNo    string `gorm:"column:house_no"`
	PostalCode string `gorm:"column:postal_code;index"`
	City       string `gorm:"column:city"`
}

func (addressRecord) TableName() string { return "customer_addresses" }

type fileRecord struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	CustomerID int64     `gorm:"column:customer_id;uniqueIndex"`
	Filename   string    `gorm:"column:filename"`
	MimeType   string    `gorm:"column:mime_type;type:varchar(64)"`
	Data       []byte    `gorm:"column:data;type:bytea"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (fileRecord) TableName() string { return "customer_files" }

type contractRecord struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	Number     int64     `gorm:"column:number"`
	CustomerID int64     `gorm:"column:customer_id;index"`
	SignedAt   time.Time `gorm:"column:signed_at"`
	Content    string    `gorm:"column:content;type:text"`
}

func (contractRecord) TableName() string { return "maintenance_contracts" }

// GetByID fetches a customer; depth selects which related data is loaded.
func (r *Repository) GetByID(ctx context.Context, id int64, depth ports.FetchDepth) (*ports.CustomerView, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record customerRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.view(ctx, &record, depth)
}

// FindByEmail fetches a customer by canonical email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record customerRecord
	key := strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).First(&record, "email_lower = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return r.withAddress(ctx, &record)
}

// List returns all customers, optionally ordered by id.
func (r *Repository) List(ctx context.Context, depth ports.FetchDepth, order ports.OrderBy) ([]*ports.CustomerView, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx)
	if order == ports.OrderByID {
		query = query.Order("id")
	}
	var records []customerRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return r.views(ctx, records, depth)
}

// FindByLastName matches the last name case-insensitively.
func (r *Repository) FindByLastName(ctx context.Context, lastName string, depth ports.FetchDepth) ([]*ports.CustomerView, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []customerRecord
	if err := r.db.WithContext(ctx).
		Where("lower(last_name) = lower(?)", lastName).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return r.views(ctx, records, depth)
}

// FindByPostalCode matches on the owned address.
func (r *Repository) FindByPostalCode(ctx context.Context, postalCode string) ([]*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []customerRecord
	if err := r.db.WithContext(ctx).
		Joins("JOIN customer_addresses a ON a.customer_id = customers.id").
		Where("a.postal_code = ?", postalCode).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return r.customers(ctx, records)
}

func (r *Repository) FindBySince(ctx context.Context, since time.Time) ([]*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []customerRecord
	if err := r.db.WithContext(ctx).Where("since = ?", since).Find(&records).Error; err != nil {
		return nil, err
	}
	return r.customers(ctx, records)
}

func (r *Repository) FindByGender(ctx context.Context, gender domain.Gender) ([]*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []customerRecord
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND gender = ?", string(domain.KindPrivate), string(gender)).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return r.customers(ctx, records)
}

// FindIDsByPrefix lists customer ids whose decimal form starts with prefix.
func (r *Repository) FindIDsByPrefix(ctx context.Context, prefix string, limit int) ([]int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var ids []int64
	query := r.db.WithContext(ctx).Model(&customerRecord{}).
		Where("CAST(id AS TEXT) LIKE ?", prefix+"%").
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) FindByIDPrefix(ctx context.Context, prefix string, limit int) ([]*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []customerRecord
	query := r.db.WithContext(ctx).
		Where("CAST(id AS TEXT) LIKE ?", prefix+"%").
		Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return r.customers(ctx, records)
}

func (r *Repository) FindLastNamesByPrefix(ctx context.Context, prefix string, limit int) ([]string, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var names []string
	query := r.db.WithContext(ctx).Model(&customerRecord{}).
		Distinct("last_name").
		Where("last_name ILIKE ?", prefix+"%").
		Order("last_name")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Pluck("last_name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// Insert persists a new customer with its address in one transaction. A
// concurrent insert with the same email surfaces as ErrEmailTaken from the
// unique index.
func (r *Repository) Insert(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := toRecord(customer)
	record.ID = 0
	record.Version = domain.FirstVersion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		if customer.Address != nil {
			address := toAddressRecord(record.ID, customer.Address)
			address.ID = 0
			return tx.Create(&address).Error
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	view, err := r.GetByID(ctx, record.ID, ports.FetchCustomerOnly)
	if err != nil {
		return nil, err
	}
	return view.Customer, nil
}

// Update applies a version-checked update. Zero affected rows means the
// customer vanished or the token is stale; the two are told apart with a
// follow-up existence probe.
func (r *Repository) Update(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := toRecord(customer)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&customerRecord{}).
			Where("id = ? AND version = ?", customer.ID, customer.Version).
			Updates(map[string]any{
				"kind":          record.Kind,
				"last_name":     record.LastName,
				"first_name":    record.FirstName,
				"category":      record.Category,
				"discount":      record.Discount,
				"revenue":       record.Revenue,
				"since":         record.Since,
				"email":         record.Email,
				"email_lower":   record.EmailLower,
				"newsletter":    record.Newsletter,
				"password_hash": record.Password,
				"gender":        record.Gender,
				"remarks":       record.Remarks,
				"roles":         record.Roles,
				"version":       gorm.Expr("version + 1"),
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&customerRecord{}).Where("id = ?", customer.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ports.ErrNotFound
			}
			return ports.ErrVersionConflict
		}
		if customer.Address != nil {
			address := toAddressRecord(customer.ID, customer.Address)
			return tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "customer_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"street", "house_no", "postal_code", "city"}),
			}).Create(&address).Error
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	view, err := r.GetByID(ctx, customer.ID, ports.FetchCustomerOnly)
	if err != nil {
		return nil, err
	}
	return view.Customer, nil
}

// Delete removes the customer together with its owned address, file and
// contracts.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&contractRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&fileRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&addressRecord{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&customerRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

// SaveFile creates or overwrites the single attachment of a customer.
func (r *Repository) SaveFile(ctx context.Context, customerID int64, file *domain.File) (*domain.File, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&customerRecord{}).Where("id = ?", customerID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ports.ErrNotFound
	}
	record := fileRecord{
		CustomerID: customerID,
		Filename:   file.Filename,
		MimeType:   file.MimeType,
		Data:       file.Data,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"filename", "mime_type", "data", "updated_at"}),
		}).
		Create(&record).Error; err != nil {
		return nil, err
	}
	var stored fileRecord
	if err := r.db.WithContext(ctx).First(&stored, "customer_id = ?", customerID).Error; err != nil {
		return nil, err
	}
	return stored.toDomain(), nil
}

func (r *Repository) ContractsByCustomer(ctx context.Context, customerID int64) ([]domain.MaintenanceContract, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []contractRecord
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	contracts := make([]domain.MaintenanceContract, 0, len(records))
	for i := range records {
		contracts = append(contracts, records[i].toDomain())
	}
	return contracts, nil
}

func (r *Repository) InsertContract(ctx context.Context, contract *domain.MaintenanceContract) (*domain.MaintenanceContract, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&customerRecord{}).Where("id = ?", contract.CustomerID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ports.ErrNotFound
	}
	record := contractRecord{
		Number:     contract.Number,
		CustomerID: contract.CustomerID,
		SignedAt:   contract.SignedAt,
		Content:    contract.Content,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	stored := record.toDomain()
	return &stored, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres customer repository not configured")
	}
	return nil
}

func (r *Repository) view(ctx context.Context, record *customerRecord, depth ports.FetchDepth) (*ports.CustomerView, error) {
	customer, err := r.withAddress(ctx, record)
	if err != nil {
		return nil, err
	}
	view := &ports.CustomerView{Customer: customer}
	switch depth {
	case ports.FetchWithOrders:
		if err := r.db.WithContext(ctx).Table("orders").
			Where("customer_id = ?", record.ID).
			Order("id").
			Pluck("id", &view.OrderIDs).Error; err != nil {
			return nil, err
		}
	case ports.FetchWithContracts:
		contracts, err := r.ContractsByCustomer(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		view.Contracts = contracts
	}
	return view, nil
}

func (r *Repository) views(ctx context.Context, records []customerRecord, depth ports.FetchDepth) ([]*ports.CustomerView, error) {
	views := make([]*ports.CustomerView, 0, len(records))
	for i := range records {
		view, err := r.view(ctx, &records[i], depth)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (r *Repository) customers(ctx context.Context, records []customerRecord) ([]*domain.Customer, error) {
	customers := make([]*domain.Customer, 0, len(records))
	for i := range records {
		customer, err := r.withAddress(ctx, &records[i])
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

func (r *Repository) withAddress(ctx context.Context, record *customerRecord) (*domain.Customer, error) {
	customer := record.toDomain()
	var address addressRecord
	err := r.db.WithContext(ctx).First(&address, "customer_id = ?", record.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customer, nil
		}
		return nil, err
	}
	customer.Address = address.toDomain()
	return customer, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "23505")
}

func toRecord(customer *domain.Customer) customerRecord {
	return customerRecord{
		ID:         customer.ID,
		Version:    customer.Version,
		Kind:       string(customer.Kind),
		LastName:   customer.LastName,
		FirstName:  customer.FirstName,
		Category:   customer.Category,
		Discount:   customer.Discount,
		Revenue:    customer.Revenue,
		Since:      customer.Since,
		Email:      customer.Email,
		EmailLower: customer.EmailKey(),
		Newsletter: customer.Newsletter,
		Password:   customer.Password,
		Gender:     string(customer.Gender),
		Remarks:    customer.Remarks,
		Roles:      rolesToStrings(customer.Roles),
	}
}

func toAddressRecord(customerID int64, address *domain.Address) addressRecord {
	return addressRecord{
		ID:         address.ID,
		CustomerID: customerID,
		Street:     address.Street,
		HouseNo:    address.HouseNo,
		PostalCode: address.PostalCode,
		City:       address.City,
	}
}

func (r customerRecord) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:         r.ID,
		Version:    r.Version,
		Kind:       domain.Kind(r.Kind),
		LastName:   r.LastName,
		FirstName:  r.FirstName,
		Category:   r.Category,
		Discount:   r.Discount,
		Revenue:    r.Revenue,
		Since:      r.Since,
		Email:      r.Email,
		Newsletter: r.Newsletter,
		Password:   r.Password,
		Gender:     domain.Gender(r.Gender),
		Remarks:    r.Remarks,
		Roles:      stringsToRoles(r.Roles),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r addressRecord) toDomain() *domain.Address {
	return &domain.Address{
		ID:         r.ID,
		Street:     r.Street,
		HouseNo:    r.HouseNo,
		PostalCode: r.PostalCode,
		City:       r.City,
	}
}

func (r fileRecord) toDomain() *domain.File {
	return &domain.File{
		ID:       r.ID,
		Filename: r.Filename,
		MimeType: r.MimeType,
		Data:     r.Data,
	}
}

func (r contractRecord) toDomain() domain.MaintenanceContract {
	return domain.MaintenanceContract{
		ID:         r.ID,
		Number:     r.Number,
		CustomerID: r.CustomerID,
		SignedAt:   r.SignedAt,
		Content:    r.Content,
	}
}

func rolesToStrings(roles []domain.Role) pq.StringArray {
	result := make(pq.StringArray, 0, len(roles))
	for _, role := range roles {
		result = append(result, string(role))
	}
	return result
}

func stringsToRoles(values pq.StringArray) []domain.Role {
	roles := make([]domain.Role, 0, len(values))
	for _, value := range values {
		roles = append(roles, domain.Role(value))
	}
	return roles
}

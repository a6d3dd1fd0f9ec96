package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&customerRecord{},
		&addressRecord{},
		&fileRecord{},
		&contractRecord{},
		&orderRecord{},
		&lineRecord{},
		&deliveryRecord{},
		&deliveryOrderRecord{},
		&articleRecord{},
	)
}

// Customer schema mirrors the customers Postgres adapter. The email_lower
// unique index is the storage backstop for email uniqueness.
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

// At most one attachment per customer, enforced by the unique index.
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

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID         int64     `gorm:"primaryKey;column:id"`
	CustomerID int64     `gorm:"column:customer_id;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type lineRecord struct {
	ID        int64 `gorm:"primaryKey;column:id"`
	OrderID   int64 `gorm:"column:order_id;index"`
	ArticleID int64 `gorm:"column:article_id;index"`
	Quantity  int16 `gorm:"column:quantity"`
}

func (lineRecord) TableName() string { return "order_lines" }

type deliveryRecord struct {
	ID     int64  `gorm:"primaryKey;column:id"`
	Number string `gorm:"column:number;index"`
}

func (deliveryRecord) TableName() string { return "deliveries" }

type deliveryOrderRecord struct {
	DeliveryID int64 `gorm:"primaryKey;column:delivery_id"`
	OrderID    int64 `gorm:"primaryKey;column:order_id;index"`
}

func (deliveryOrderRecord) TableName() string { return "delivery_orders" }

// Article schema mirrors the catalog Postgres adapter.
type articleRecord struct {
	ID        int64   `gorm:"primaryKey;column:id"`
	Name      string  `gorm:"column:name;index"`
	Price     float64 `gorm:"column:price"`
	Available bool    `gorm:"column:available;index"`
}

func (articleRecord) TableName() string { return "articles" }

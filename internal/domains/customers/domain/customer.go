package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Kind discriminates the customer variants. Both share the full attribute set;
// variant-specific behavior dispatches on the kind value.
type Kind string

const (
	KindPrivate   Kind = "P"
	KindCorporate Kind = "C"
)

// Gender is only meaningful for private customers.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Role grants capabilities to a customer account.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

const (
	// NoID marks an entity without a persistent identity yet.
	NoID int64 = 0
	// FirstVersion is the concurrency token of a freshly persisted customer.
	FirstVersion = 1

	LastNameMinLen  = 2
	LastNameMaxLen  = 32
	FirstNameMaxLen = 32
	EmailMaxLen     = 32
	RemarksMaxLen   = 2000
	MaxDiscount     = 0.5
)

// Optional nobility prefix, a capitalized name, optionally hyphenated.
var lastNamePattern = regexp.MustCompile(`^(o'|von |von der |von und zu |van )?\p{Lu}\p{Ll}+(-\p{Lu}\p{Ll}+)?$`)

var (
	ErrInvalidKind      = errors.New("customer kind is invalid")
	ErrInvalidLastName  = errors.New("last name must be 2-32 chars and match the name pattern")
	ErrFirstNameTooLong = errors.New("first name must not exceed 32 chars")
	ErrInvalidEmail     = errors.New("email must contain '@' and not exceed 32 chars")
	ErrInvalidDiscount  = errors.New("discount must be between 0 and 0.5")
	ErrSinceNotPast     = errors.New("customer-since date must be in the past")
	ErrRemarksTooLong   = errors.New("remarks must not exceed 2000 chars")
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	ErrTermsNotAccepted = errors.New("terms must be accepted")
	ErrMissingAddress   = errors.New("address is required")
	ErrGenderOnPrivate  = errors.New("gender is only valid for private customers")
)

// Address is exclusively owned by a customer and lives and dies with it.
type Address struct {
	ID         int64
	Street     string
	HouseNo    string
	PostalCode string
	City       string
}

// File is a binary attachment (image, video or audio) owned by a customer.
// At most one file exists per customer; re-attaching overwrites it in place.
type File struct {
	ID       int64
	Filename string
	MimeType string
	Data     []byte
}

// Set overwrites payload, filename and MIME type of an existing attachment.
func (f *File) Set(data []byte, filename, mimeType string) {
	f.Data = data
	f.Filename = filename
	f.MimeType = mimeType
}

// MaintenanceContract is a service agreement associated with a customer.
type MaintenanceContract struct {
	ID         int64
	Number     int64
	CustomerID int64
	SignedAt   time.Time
	Content    string
}

// Customer is the aggregate root of the customers bounded context.
// Version is the optimistic-concurrency token: it starts at FirstVersion and
// increments on every successful update.
type Customer struct {
	ID      int64
	Version int
	Kind    Kind

	LastName   string
	FirstName  string
	Category   int16
	Discount   float64
	Revenue    float64
	Since      time.Time
	Email      string
	Newsletter bool

	// Password holds the hash at rest. PasswordConfirm and TermsAccepted are
	// transient inputs used only during create/update validation.
	Password        string
	PasswordConfirm string
	TermsAccepted   bool

	Gender  Gender
	Remarks string

	Address *Address
	Roles   []Role
	File    *File

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPrivateCustomer builds a private customer without persisting it.
func NewPrivateCustomer(lastName, firstName, email string, since time.Time) *Customer {
	return &Customer{Kind: KindPrivate, LastName: lastName, FirstName: firstName, Email: email, Since: since}
}

// NewCorporateCustomer builds a corporate customer without persisting it.
func NewCorporateCustomer(lastName, firstName, email string, since time.Time) *Customer {
	return &Customer{Kind: KindCorporate, LastName: lastName, FirstName: firstName, Email: email, Since: since}
}

// Validate enforces the invariants checked before persistence.
func (c *Customer) Validate() error {
	if c.Kind != KindPrivate && c.Kind != KindCorporate {
		return ErrInvalidKind
	}
	if len(c.LastName) < LastNameMinLen || len(c.LastName) > LastNameMaxLen || !lastNamePattern.MatchString(c.LastName) {
		return ErrInvalidLastName
	}
	if len(c.FirstName) > FirstNameMaxLen {
		return ErrFirstNameTooLong
	}
	if len(c.Email) > EmailMaxLen || !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if c.Discount < 0 || c.Discount > MaxDiscount {
		return ErrInvalidDiscount
	}
	if !c.Since.Before(time.Now()) {
		return ErrSinceNotPast
	}
	if len(c.Remarks) > RemarksMaxLen {
		return ErrRemarksTooLong
	}
	if c.Password == "" || c.Password != c.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if !c.TermsAccepted {
		return ErrTermsNotAccepted
	}
	if c.Address == nil {
		return ErrMissingAddress
	}
	if c.Kind != KindPrivate && c.Gender != "" {
		return ErrGenderOnPrivate
	}
	return nil
}

// EmailKey returns the canonical form used for uniqueness comparisons.
func (c *Customer) EmailKey() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// AddRole grants a role once; adding an existing role is a no-op.
func (c *Customer) AddRole(role Role) {
	for _, r := range c.Roles {
		if r == role {
			return
		}
	}
	c.Roles = append(c.Roles, role)
}

// HasRole reports whether the customer carries the given role.
func (c *Customer) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

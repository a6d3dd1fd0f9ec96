package mapper

import (
	"time"

	customersdomain "github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	customersports "github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
)

// Customer represents the transport-level customer payload. The password pair
// is write-only; the hash never leaves the service.
type Customer struct {
	ID              int64     `json:"id,omitempty"`
	Version         int       `json:"version,omitempty"`
	Kind            string    `json:"kind"`
	LastName        string    `json:"lastName"`
	FirstName       string    `json:"firstName,omitempty"`
	Category        int16     `json:"category,omitempty"`
	Discount        float64   `json:"discount,omitempty"`
	Revenue         float64   `json:"revenue,omitempty"`
	Since           time.Time `json:"since"`
	Email           string    `json:"email"`
	Newsletter      bool      `json:"newsletter,omitempty"`
	Password        string    `json:"password,omitempty"`
	PasswordConfirm string    `json:"passwordConfirm,omitempty"`
	TermsAccepted   bool      `json:"termsAccepted,omitempty"`
	Gender          string    `json:"gender,omitempty"`
	Remarks         string    `json:"remarks,omitempty"`
	Address         *Address  `json:"address,omitempty"`
	Roles           []string  `json:"roles,omitempty"`
	File            *File     `json:"file,omitempty"`
	OrderIDs        []int64   `json:"orderIds,omitempty"`
}

// Address represents the transport-level address payload.
type Address struct {
	ID         int64  `json:"id,omitempty"`
	Street     string `json:"street,omitempty"`
	HouseNo    string `json:"houseNo,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
}

// File carries attachment metadata; the payload travels as a raw body.
type File struct {
	ID       int64  `json:"id,omitempty"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// Contract represents the transport-level maintenance contract payload.
type Contract struct {
	ID         int64     `json:"id,omitempty"`
	Number     int64     `json:"number"`
	CustomerID int64     `json:"customerId,omitempty"`
	SignedAt   time.Time `json:"signedAt"`
	Content    string    `json:"content,omitempty"`
}

// ToDomainCustomer converts a transport customer to its domain counterpart.
func ToDomainCustomer(model Customer) *customersdomain.Customer {
	customer := &customersdomain.Customer{
		ID:              model.ID,
		Version:         model.Version,
		Kind:            customersdomain.Kind(model.Kind),
		LastName:        model.LastName,
		FirstName:       model.FirstName,
		Category:        model.Category,
		Discount:        model.Discount,
		Revenue:         model.Revenue,
		Since:           model.Since,
		Email:           model.Email,
		Newsletter:      model.Newsletter,
		Password:        model.Password,
		PasswordConfirm: model.PasswordConfirm,
		TermsAccepted:   model.TermsAccepted,
		Gender:          customersdomain.Gender(model.Gender),
		Remarks:         model.Remarks,
	}
	if model.Address != nil {
		customer.Address = &customersdomain.Address{
			ID:         model.Address.ID,
			Street:     model.Address.Street,
			HouseNo:    model.Address.HouseNo,
			PostalCode: model.Address.PostalCode,
			City:       model.Address.City,
		}
	}
	for _, role := range model.Roles {
		customer.AddRole(customersdomain.Role(role))
	}
	return customer
}

// FromDomainCustomer converts a domain customer into a transport representation.
func FromDomainCustomer(customer *customersdomain.Customer) Customer {
	if customer == nil {
		return Customer{}
	}
	model := Customer{
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
		Newsletter: customer.Newsletter,
		Gender:     string(customer.Gender),
		Remarks:    customer.Remarks,
	}
	if customer.Address != nil {
		model.Address = &Address{
			ID:         customer.Address.ID,
			Street:     customer.Address.Street,
			HouseNo:    customer.Address.HouseNo,
			PostalCode: customer.Address.PostalCode,
			City:       customer.Address.City,
		}
	}
	for _, role := range customer.Roles {
		model.Roles = append(model.Roles, string(role))
	}
	if customer.File != nil {
		model.File = &File{
			ID:       customer.File.ID,
			Filename: customer.File.Filename,
			MimeType: customer.File.MimeType,
			Size:     len(customer.File.Data),
		}
	}
	return model
}

// FromDomainCustomers converts a slice of domain customers.
func FromDomainCustomers(customers []*customersdomain.Customer) []Customer {
	result := make([]Customer, 0, len(customers))
	for _, customer := range customers {
		result = append(result, FromDomainCustomer(customer))
	}
	return result
}

// FromView converts a repository view, carrying the order ids when loaded.
func FromView(view *customersports.CustomerView) Customer {
	if view == nil {
		return Customer{}
	}
	model := FromDomainCustomer(view.Customer)
	model.OrderIDs = view.OrderIDs
	return model
}

// FromViews converts a slice of repository views.
func FromViews(views []*customersports.CustomerView) []Customer {
	result := make([]Customer, 0, len(views))
	for _, view := range views {
		result = append(result, FromView(view))
	}
	return result
}

// ToDomainContract converts a transport contract to its domain counterpart.
func ToDomainContract(model Contract) *customersdomain.MaintenanceContract {
	return &customersdomain.MaintenanceContract{
		ID:         model.ID,
		Number:     model.Number,
		CustomerID: model.CustomerID,
		SignedAt:   model.SignedAt,
		Content:    model.Content,
	}
}

// FromDomainContracts converts domain contracts into transport representation.
func FromDomainContracts(contracts []customersdomain.MaintenanceContract) []Contract {
	result := make([]Contract, 0, len(contracts))
	for _, contract := range contracts {
		result = append(result, Contract{
			ID:         contract.ID,
			Number:     contract.Number,
			CustomerID: contract.CustomerID,
			SignedAt:   contract.SignedAt,
			Content:    contract.Content,
		})
	}
	return result
}

package domain

import "errors"

const NoID int64 = 0

var (
	ErrNameRequired = errors.New("article name is required")
	ErrInvalidPrice = errors.New("article price must not be negative")
)

// Article is a sellable catalog entry.
type Article struct {
	ID        int64
	Name      string
	Price     float64
	Available bool
}

func (a *Article) Validate() error {
	if a.Name == "" {
		return ErrNameRequired
	}
	if a.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

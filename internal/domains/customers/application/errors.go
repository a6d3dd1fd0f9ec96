package application

import (
	"errors"
	"fmt"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
	"github.com/shopkit/go-shop-api-server/internal/filestore"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid customer input")
	// ErrEmailExists signals the email uniqueness invariant would be violated.
	ErrEmailExists = errors.New("email address already exists")
	// ErrConcurrentlyDeleted signals the update target vanished between read
	// and write.
	ErrConcurrentlyDeleted = errors.New("customer concurrently deleted")
	// ErrOptimisticConflict signals a version mismatch on update.
	ErrOptimisticConflict = errors.New("customer concurrently modified")
	// ErrHasOrders blocks deletion while the customer still owns orders.
	ErrHasOrders = errors.New("customer still has orders")
	// ErrUnknownMimeType signals an attachment whose type cannot be resolved.
	ErrUnknownMimeType = errors.New("mime type could not be determined")
)

func emailExists(email string) error {
	return fmt.Errorf("%w: %s", ErrEmailExists, email)
}

func concurrentlyDeleted(id int64) error {
	return fmt.Errorf("%w: id=%d", ErrConcurrentlyDeleted, id)
}

func optimisticConflict(id int64, version int) error {
	return fmt.Errorf("%w: id=%d version=%d", ErrOptimisticConflict, id, version)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidLastName),
		errors.Is(err, domain.ErrFirstNameTooLong),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidDiscount),
		errors.Is(err, domain.ErrSinceNotPast),
		errors.Is(err, domain.ErrRemarksTooLong),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrTermsNotAccepted),
		errors.Is(err, domain.ErrMissingAddress),
		errors.Is(err, domain.ErrGenderOnPrivate):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ports.ErrEmailTaken):
		return fmt.Errorf("%w: %w", ErrEmailExists, err)
	case errors.Is(err, filestore.ErrUnknownType):
		return fmt.Errorf("%w: %w", ErrUnknownMimeType, err)
	default:
		return err
	}
}

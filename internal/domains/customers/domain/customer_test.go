package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validCustomer() *Customer {
	return &Customer{
		Kind:            KindPrivate,
		LastName:        "Miller",
		FirstName:       "Anna",
		Email:           "anna.miller@example.com",
		Since:           time.Now().Add(-24 * time.Hour),
		Password:        "secret",
		PasswordConfirm: "secret",
		TermsAccepted:   true,
		Gender:          GenderFemale,
		Address:         &Address{Street: "Main St", HouseNo: "1", PostalCode: "12345", City: "Springfield"},
	}
}

func TestValidate_AcceptsWellFormedCustomer(t *testing.T) {
	require.NoError(t, validCustomer().Validate())
}

func TestValidate_LastNamePattern(t *testing.T) {
	cases := map[string]bool{
		"Miller":            true,
		"Miller-Smith":      true,
		"von Miller":        true,
		"von und zu Miller": true,
		"o'Brian":           true,
		"miller":            false,
		"MILLER":            false,
		"M":                 false,
		"Miller-smith":      false,
		"Miller Smith":      false,
	}
	for name, ok := range cases {
		c := validCustomer()
		c.LastName = name
		err := c.Validate()
		if ok {
			require.NoError(t, err, name)
		} else {
			require.ErrorIs(t, err, ErrInvalidLastName, name)
		}
	}
}

func TestValidate_LastNameLength(t *testing.T) {
	c := validCustomer()
	c.LastName = strings.Repeat("Ab", 17)
	require.ErrorIs(t, c.Validate(), ErrInvalidLastName)
}

func TestValidate_Email(t *testing.T) {
	c := validCustomer()
	c.Email = "not-an-email"
	require.ErrorIs(t, c.Validate(), ErrInvalidEmail)

	c = validCustomer()
	c.Email = strings.Repeat("a", 30) + "@ex.com"
	require.ErrorIs(t, c.Validate(), ErrInvalidEmail)
}

func TestValidate_DiscountBounds(t *testing.T) {
	c := validCustomer()
	c.Discount = 0.51
	require.ErrorIs(t, c.Validate(), ErrInvalidDiscount)

	c.Discount = -0.01
	require.ErrorIs(t, c.Validate(), ErrInvalidDiscount)

	c.Discount = 0.5
	require.NoError(t, c.Validate())
}

func TestValidate_SinceMustBePast(t *testing.T) {
	c := validCustomer()
	c.Since = time.Now().Add(time.Hour)
	require.ErrorIs(t, c.Validate(), ErrSinceNotPast)
}

func TestValidate_PasswordPair(t *testing.T) {
	c := validCustomer()
	c.PasswordConfirm = "other"
	require.ErrorIs(t, c.Validate(), ErrPasswordMismatch)

	c = validCustomer()
	c.Password = ""
	c.PasswordConfirm = ""
	require.ErrorIs(t, c.Validate(), ErrPasswordMismatch)
}

func TestValidate_Terms(t *testing.T) {
	c := validCustomer()
	c.TermsAccepted = false
	require.ErrorIs(t, c.Validate(), ErrTermsNotAccepted)
}

func TestValidate_AddressRequired(t *testing.T) {
	c := validCustomer()
	c.Address = nil
	require.ErrorIs(t, c.Validate(), ErrMissingAddress)
}

func TestValidate_GenderOnlyForPrivate(t *testing.T) {
	c := validCustomer()
	c.Kind = KindCorporate
	require.ErrorIs(t, c.Validate(), ErrGenderOnPrivate)

	c.Gender = ""
	require.NoError(t, c.Validate())
}

func TestValidate_Kind(t *testing.T) {
	c := validCustomer()
	c.Kind = "X"
	require.ErrorIs(t, c.Validate(), ErrInvalidKind)
}

func TestAddRole_Idempotent(t *testing.T) {
	c := validCustomer()
	c.AddRole(RoleCustomer)
	c.AddRole(RoleCustomer)
	c.AddRole(RoleAdmin)
	require.Equal(t, []Role{RoleCustomer, RoleAdmin}, c.Roles)
	require.True(t, c.HasRole(RoleAdmin))
	require.False(t, validCustomer().HasRole(RoleAdmin))
}

func TestEmailKey_Canonicalizes(t *testing.T) {
	c := validCustomer()
	c.Email = "  Anna.Miller@Example.COM "
	require.Equal(t, "anna.miller@example.com", c.EmailKey())
}

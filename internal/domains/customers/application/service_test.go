package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/adapters/memory"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
	"github.com/shopkit/go-shop-api-server/internal/events"
)

type fakeEncoder struct{}

func (fakeEncoder) Encode(plaintext string) string { return "enc:" + plaintext }

type fakeBlobStore struct {
	mu       sync.Mutex
	requests []string
	full     bool
}

func (f *fakeBlobStore) Enqueue(filename, _ string, _ []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.requests = append(f.requests, filename)
	return true
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type staticOrderIndex map[int64][]int64

func (s staticOrderIndex) OrderIDsFor(customerID int64) []int64 { return s[customerID] }

func newTestService() (*Service, *memory.Repository, *fakeBlobStore, *recordingPublisher) {
	repo := memory.NewRepository()
	blobs := &fakeBlobStore{}
	bus := &recordingPublisher{}
	return NewService(repo, fakeEncoder{}, blobs, bus), repo, blobs, bus
}

func validCustomer(email string) *domain.Customer {
	return &domain.Customer{
		Kind:            domain.KindPrivate,
		LastName:        "Miller",
		FirstName:       "Anna",
		Email:           email,
		Since:           time.Now().Add(-24 * time.Hour),
		Password:        "secret",
		PasswordConfirm: "secret",
		TermsAccepted:   true,
		Gender:          domain.GenderFemale,
		Address:         &domain.Address{Street: "Main St", HouseNo: "1", PostalCode: "12345", City: "Springfield"},
	}
}

func TestCreate_PersistsHashesAndPublishes(t *testing.T) {
	svc, _, _, bus := newTestService()

	created, err := svc.Create(context.Background(), validCustomer("anna@example.com"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, domain.FirstVersion, created.Version)
	require.Equal(t, "enc:secret", created.Password)
	require.True(t, created.HasRole(domain.RoleCustomer))

	require.Len(t, bus.events, 1)
	require.Equal(t, "customers.customer.created", bus.events[0].EventName())
}

func TestCreate_RejectsInvalidCustomer(t *testing.T) {
	svc, _, _, _ := newTestService()

	c := validCustomer("anna@example.com")
	c.TermsAccepted = false
	_, err := svc.Create(context.Background(), c)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrTermsNotAccepted)
}

func TestCreate_EmailTakenCaseInsensitive(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCustomer("ANNA@Example.Com"))
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestCreate_EmailTakenByStorageBackstop(t *testing.T) {
	// Two racing creates both pass the service-level check; the repository's
	// uniqueness guarantee must still reject the loser.
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	_, err := repo.Insert(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, validCustomer("Anna@Example.com"))
	require.ErrorIs(t, err, ports.ErrEmailTaken)

	_, err = svc.Create(ctx, validCustomer("anna@example.com"))
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestUpdate_IncrementsVersion(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	created.FirstName = "Annabel"
	updated, err := svc.Update(ctx, created, false)
	require.NoError(t, err)
	require.Equal(t, created.Version+1, updated.Version)
	require.Equal(t, "Annabel", updated.FirstName)
	// A follow-up no-op update with the returned state must stay valid.
	require.Equal(t, updated.Password, updated.PasswordConfirm)
}

func TestUpdate_StaleVersionConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	first := *created
	first.FirstName = "Annabel"
	_, err = svc.Update(ctx, &first, false)
	require.NoError(t, err)

	stale := *created
	stale.FirstName = "Anne"
	_, err = svc.Update(ctx, &stale, false)
	require.ErrorIs(t, err, ErrOptimisticConflict)
}

func TestUpdate_ConcurrentlyDeleted(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteByID(ctx, created.ID))

	_, err = svc.Update(ctx, created, false)
	require.ErrorIs(t, err, ErrConcurrentlyDeleted)
}

func TestUpdate_EmailHeldByOther(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validCustomer("first@example.com"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validCustomer("second@example.com"))
	require.NoError(t, err)

	second.Email = "First@Example.com"
	_, err = svc.Update(ctx, second, false)
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestUpdate_RehashesOnlyWhenPasswordChanged(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	created.Password = "newsecret"
	created.PasswordConfirm = "newsecret"
	updated, err := svc.Update(ctx, created, true)
	require.NoError(t, err)
	require.Equal(t, "enc:newsecret", updated.Password)
}

func TestUpdate_ValidatesMergedState(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	broken := *created
	broken.LastName = "x"
	broken.Email = "no-at-sign-and-way-too-long-for-thirty-two-chars"
	_, err = svc.Update(ctx, &broken, false)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidLastName)

	// The rejected merge must not have touched storage.
	view, err := svc.FindByID(ctx, created.ID, ports.FetchCustomerOnly)
	require.NoError(t, err)
	require.Equal(t, "Miller", view.Customer.LastName)
	require.Equal(t, "anna@example.com", view.Customer.Email)
	require.Equal(t, created.Version, view.Customer.Version)
}

func TestDeleteByID_BlockedByOrders(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)
	repo.BindOrders(staticOrderIndex{created.ID: {7, 8}})

	require.ErrorIs(t, svc.DeleteByID(ctx, created.ID), ErrHasOrders)

	// Still present.
	view, err := svc.FindByID(ctx, created.ID, ports.FetchCustomerOnly)
	require.NoError(t, err)
	require.NotNil(t, view)
}

func TestDeleteByID_MissingIsNoFault(t *testing.T) {
	svc, _, _, _ := newTestService()
	require.NoError(t, svc.DeleteByID(context.Background(), 42))
}

func TestFindByID_MissingIsNil(t *testing.T) {
	svc, _, _, _ := newTestService()
	view, err := svc.FindByID(context.Background(), 42, ports.FetchCustomerOnly)
	require.NoError(t, err)
	require.Nil(t, view)
}

func TestFindByUsername_DecimalID(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	found, err := svc.FindByUsername(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created.ID, found.ID)

	found, err = svc.FindByUsername(ctx, "anna")
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestAutocomplete_BlankPrefixYieldsNothing(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	ids, err := svc.FindIDsByPrefix(ctx, "  ")
	require.NoError(t, err)
	require.Empty(t, ids)

	names, err := svc.FindLastNamesByPrefix(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestAutocomplete_MatchesPrefix(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	ids, err := svc.FindIDsByPrefix(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, []int64{1}, ids)

	names, err := svc.FindLastNamesByPrefix(ctx, "mil")
	require.NoError(t, err)
	require.Equal(t, []string{"Miller"}, names)
}

func TestSetFile_SniffsTypeAndKeepsSingleFile(t *testing.T) {
	svc, _, blobs, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	withFile, err := svc.SetFile(ctx, created.ID, png)
	require.NoError(t, err)
	require.NotNil(t, withFile.File)
	require.Equal(t, "image/png", withFile.File.MimeType)
	firstID := withFile.File.ID

	// Re-attaching overwrites in place, it never grows a second file.
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	again, err := svc.SetFile(ctx, created.ID, gif)
	require.NoError(t, err)
	require.Equal(t, firstID, again.File.ID)
	require.Equal(t, "image/gif", again.File.MimeType)

	require.Len(t, blobs.requests, 2)
}

func TestSetFile_RejectsUnknownType(t *testing.T) {
	svc, _, blobs, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	_, err = svc.SetFile(ctx, created.ID, []byte("plain text, not a medium"))
	require.ErrorIs(t, err, ErrUnknownMimeType)
	require.Empty(t, blobs.requests)
}

func TestSetFile_MissingCustomerIsNil(t *testing.T) {
	svc, _, _, _ := newTestService()
	customer, err := svc.SetFile(context.Background(), 42, []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.Nil(t, customer)
}

func TestSetFileWithType_ParsesDeclaredType(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	withFile, err := svc.SetFileWithType(ctx, created, []byte("data"), "audio/mpeg")
	require.NoError(t, err)
	require.Equal(t, "audio/mpeg", withFile.File.MimeType)

	_, err = svc.SetFileWithType(ctx, created, []byte("data"), "application/pdf")
	require.ErrorIs(t, err, ErrUnknownMimeType)
}

func TestMaintenanceContracts_RoundTrip(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, validCustomer("anna@example.com"))
	require.NoError(t, err)

	contract := &domain.MaintenanceContract{Number: 1001, SignedAt: time.Now().Add(-time.Hour), Content: "annual service"}
	stored, err := svc.CreateMaintenanceContract(ctx, contract, created)
	require.NoError(t, err)
	require.NotZero(t, stored.ID)
	require.Equal(t, created.ID, stored.CustomerID)

	contracts, err := svc.FindMaintenanceContracts(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, contracts, 1)
	require.Equal(t, int64(1001), contracts[0].Number)
}

func TestCreateMaintenanceContract_MissingCustomer(t *testing.T) {
	svc, _, _, _ := newTestService()
	contract := &domain.MaintenanceContract{Number: 1001, SignedAt: time.Now()}
	_, err := svc.CreateMaintenanceContract(context.Background(), contract, &domain.Customer{ID: 42})
	require.ErrorIs(t, err, ErrConcurrentlyDeleted)
}

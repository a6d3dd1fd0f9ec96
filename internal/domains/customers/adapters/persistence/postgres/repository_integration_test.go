//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/shopkit/go-shop-api-server/internal/domains/customers/domain"
	"github.com/shopkit/go-shop-api-server/internal/domains/customers/ports"
	"github.com/shopkit/go-shop-api-server/internal/platform/migrations"
)

func setupCustomersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("shop_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func testCustomer(email string) *domain.Customer {
	return &domain.Customer{
		Kind:     domain.KindPrivate,
		LastName: "Miller",
		Email:    email,
		Since:    time.Now().Add(-time.Hour),
		Password: "hash",
		Roles:    []domain.Role{domain.RoleCustomer},
		Address:  &domain.Address{Street: "Main St", PostalCode: "12345", City: "Springfield"},
	}
}

func TestRepository_InsertAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCustomersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, testCustomer("anna@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.FirstVersion, created.Version)
	require.NotNil(t, created.Address)
	assert.Equal(t, "12345", created.Address.PostalCode)

	view, err := repo.GetByID(ctx, created.ID, ports.FetchCustomerOnly)
	require.NoError(t, err)
	assert.Equal(t, created.Email, view.Customer.Email)
	assert.Equal(t, []domain.Role{domain.RoleCustomer}, view.Customer.Roles)
}

func TestRepository_EmailUniqueIndexBackstop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCustomersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Insert(ctx, testCustomer("anna@example.com"))
	require.NoError(t, err)

	_, err = repo.Insert(ctx, testCustomer("ANNA@Example.com"))
	assert.ErrorIs(t, err, ports.ErrEmailTaken)
}

func TestRepository_VersionCheckedUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCustomersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, testCustomer("anna@example.com"))
	require.NoError(t, err)

	created.FirstName = "Anna"
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)

	// Replaying the old token must conflict.
	created.FirstName = "Anne"
	_, err = repo.Update(ctx, created)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	missing := testCustomer("missing@example.com")
	missing.ID = 9999
	missing.Version = 1
	_, err = repo.Update(ctx, missing)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DeleteCascadesOwnedRows(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCustomersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, testCustomer("anna@example.com"))
	require.NoError(t, err)
	_, err = repo.SaveFile(ctx, created.ID, &domain.File{Filename: "P_1.png", MimeType: "image/png", Data: []byte{1}})
	require.NoError(t, err)
	_, err = repo.InsertContract(ctx, &domain.MaintenanceContract{CustomerID: created.ID, Number: 1, SignedAt: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ports.ErrNotFound)

	contracts, err := repo.ContractsByCustomer(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, contracts)
}

func TestRepository_SaveFileUpserts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCustomersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Insert(ctx, testCustomer("anna@example.com"))
	require.NoError(t, err)

	first, err := repo.SaveFile(ctx, created.ID, &domain.File{Filename: "P_1.png", MimeType: "image/png", Data: []byte{1}})
	require.NoError(t, err)

	second, err := repo.SaveFile(ctx, created.ID, &domain.File{Filename: "P_1.gif", MimeType: "image/gif", Data: []byte{2}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "image/gif", second.MimeType)
}

func TestRepository_PrefixFinders(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCustomersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.Insert(ctx, testCustomer("a@example.com"))
	require.NoError(t, err)
	smith := testCustomer("b@example.com")
	smith.LastName = "Smith"
	_, err = repo.Insert(ctx, smith)
	require.NoError(t, err)

	ids, err := repo.FindIDsByPrefix(ctx, "1", 10)
	require.NoError(t, err)
	assert.Contains(t, ids, first.ID)

	names, err := repo.FindLastNamesByPrefix(ctx, "mi", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Miller"}, names)
}

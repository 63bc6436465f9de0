package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopadmin/backoffice/internal/domain/identity"
	"github.com/shopadmin/backoffice/internal/domain/shared"
	"github.com/shopadmin/backoffice/internal/infrastructure/migration"
	"github.com/shopadmin/backoffice/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresTestDB starts a throwaway PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.Open(sqlDB, migration.Embedded(migrations.FS), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())

	status, err := m.Status()
	require.NoError(t, err)
	assert.False(t, status.Dirty)
	assert.GreaterOrEqual(t, status.Version, uint(1))

	return db
}

func TestPostgres_IdentityRepositories(t *testing.T) {
	db := newPostgresTestDB(t)
	ctx := context.Background()

	perms := NewGormPermissionRepository(db)
	roles := NewGormRoleRepository(db)
	users := NewGormUserRepository(db)

	catalog := identity.DefaultPermissionCatalog()
	batch := make([]*identity.Permission, len(catalog))
	for i := range catalog {
		batch[i] = &catalog[i]
	}
	added, err := perms.CreateIfMissing(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, int64(len(catalog)), added)

	added, err = perms.CreateIfMissing(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, added, "seeding twice adds nothing")

	admin, err := identity.NewRole("Admin", "", []string{"role:delete", "role:read"})
	require.NoError(t, err)
	require.NoError(t, roles.Create(ctx, admin))

	dup, err := identity.NewRole("Admin", "", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, roles.Create(ctx, dup), shared.ErrAlreadyExists)

	// the catalog entry goes away, the reference stays
	require.NoError(t, perms.Delete(ctx, "role:delete"))
	got, err := roles.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"role:delete", "role:read"}, got.Permissions)

	user, err := identity.NewUser("Root@Example.com", "Root", "Password123")
	require.NoError(t, err)
	user.AssignRole(admin.ID)
	require.NoError(t, users.Create(ctx, user))

	again, err := identity.NewUser("root@example.com", "", "Password123")
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, again), shared.ErrAlreadyExists)

	require.NoError(t, users.UpdateRefreshToken(ctx, user.ID, "rt-1"))
	loaded, err := users.FindByEmail(ctx, "ROOT@example.com")
	require.NoError(t, err)
	assert.Equal(t, "rt-1", loaded.RefreshToken)

	require.NoError(t, users.RecordLogin(ctx, user.ID, loaded.PasswordHash, "rt-2", time.Now()))
	assert.ErrorIs(t, users.RecordLogin(ctx, user.ID, "stale-hash", "rt-3", time.Now()), shared.ErrNotFound)
	require.NoError(t, users.SetEmailVerified(ctx, user.ID, time.Now()))
	loaded, err = users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "rt-2", loaded.RefreshToken)
	assert.True(t, loaded.EmailVerified)
	assert.Equal(t, user.Version+1, loaded.Version)

	principal := identity.NewPrincipal(loaded, got)
	assert.True(t, identity.Check(principal, "role:delete").Allowed)

	// deleting a role does not touch users pointing at it
	require.NoError(t, roles.Delete(ctx, admin.ID))
	loaded, err = users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.RoleID)
	assert.Equal(t, admin.ID, *loaded.RoleID)

	assert.ErrorIs(t, users.UpdateRefreshToken(ctx, uuid.New(), "x"), shared.ErrNotFound)
}

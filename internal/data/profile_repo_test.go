package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/techinsights/kbsite/internal/domain/auth"
	"github.com/techinsights/kbsite/internal/domain/model"
	"github.com/techinsights/kbsite/internal/testutil"
)

func TestProfileRepo_Upsert_RefreshesProviderFields(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewProfileRepo(db)

		p, err := repo.Upsert(ctx, &model.Profile{
			ID:       "user-1",
			Email:    "Old@Example.com",
			FullName: "Old Name",
		})
		require.NoError(t, err)
		assert.Equal(t, "old@example.com", p.Email)
		firstCreated := p.CreatedAt

		p, err = repo.Upsert(ctx, &model.Profile{
			ID:       "user-1",
			Email:    "new@example.com",
			FullName: "New Name",
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", p.Email)
		assert.Equal(t, "New Name", p.FullName)
		assert.Equal(t, firstCreated, p.CreatedAt)

		got, err := repo.GetByEmail(ctx, "NEW@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user-1", got.ID)

		_, err = repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestProfileRepo_ListWithRoles_DefaultsToUser(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		profiles := NewProfileRepo(db)
		roles := NewRoleRepo(db)

		admin := createTestProfile(t, db, "admin-1", "admin@example.com")
		createTestProfile(t, db, "plain-1", "plain@example.com")

		_, err := roles.Set(ctx, admin.ID, domainauth.RoleAdmin)
		require.NoError(t, err)

		accounts, err := profiles.ListWithRoles(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, accounts, 2)

		byID := map[string]domainauth.Role{}
		for _, a := range accounts {
			byID[a.ID] = a.Role
		}
		assert.Equal(t, domainauth.RoleAdmin, byID["admin-1"])
		assert.Equal(t, domainauth.RoleUser, byID["plain-1"])
	})
}

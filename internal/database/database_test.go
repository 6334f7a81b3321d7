package database

import (
	"testing"

	"dakku/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_CoversCoreEntities(t *testing.T) {
	t.Parallel()

	wantLike := false
	wantImage := false
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.Like:
			wantLike = true
		case *models.PostImage:
			wantImage = true
		}
	}
	assert.True(t, wantLike, "PersistentModels should include Like")
	assert.True(t, wantImage, "PersistentModels should include PostImage")
}

func TestPersistentModels_AutoMigrate(t *testing.T) {
	t.Parallel()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"users", "profiles", "posts", "post_images", "comments", "likes"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
	}
}

func TestGetMigrations_RegistryIsOrdered(t *testing.T) {
	t.Parallel()

	ms := GetMigrations()
	require.NotEmpty(t, ms)

	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version)
	}

	first := GetMigrationByVersion(1)
	require.NotNil(t, first)
	assert.Equal(t, "init", first.Name)
	assert.NotEmpty(t, first.UpScript)
	assert.NotEmpty(t, first.DownScript)
	assert.Equal(t, "000001_init", first.String())
}

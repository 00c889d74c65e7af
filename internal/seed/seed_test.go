package seed

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeederRun(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, Options{Users: 3, Posts: 10, Comments: 15, RandSeed: 42, HashCost: bcrypt.MinCost})

	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 3, Posts: 10, Comments: 15}, sum)

	assert.Equal(t, int64(3), count(t, db, &models.User{}))
	assert.Equal(t, int64(10), count(t, db, &models.Post{}))
	assert.Equal(t, int64(15), count(t, db, &models.Comment{}))

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))

	var orphans int64
	require.NoError(t, db.Model(&models.Comment{}).
		Where("post_id NOT IN (?)", db.Model(&models.Post{}).Select("id")).
		Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestSeederClean(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	_, err := NewSeeder(db, Options{Users: 2, Posts: 4, Comments: 4, RandSeed: 1, HashCost: bcrypt.MinCost}).Run(ctx)
	require.NoError(t, err)

	sum, err := NewSeeder(db, Options{Users: 1, Posts: 2, Clean: true, RandSeed: 2, HashCost: bcrypt.MinCost}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 1, Posts: 2}, sum)

	assert.Equal(t, int64(1), count(t, db, &models.User{}))
	assert.Equal(t, int64(2), count(t, db, &models.Post{}))
	assert.Zero(t, count(t, db, &models.Comment{}))
}

func TestSeederWithoutUsersCreatesNothing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	sum, err := NewSeeder(db, Options{Posts: 5, Comments: 5, RandSeed: 3}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Zero(t, count(t, db, &models.Post{}))
}

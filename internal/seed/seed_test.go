package seed

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}))
	return db
}

func TestEnsureAdmin_CreatesOnce(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	require.NoError(t, EnsureAdmin(db, node, "Admin@Example.com", "secret"))
	require.NoError(t, EnsureAdmin(db, node, "admin@example.com", "other"))

	var users []authdomain.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, authdomain.RoleAdmin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("secret")))
}

func TestEnsureAdmin_Validation(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	assert.NoError(t, EnsureAdmin(db, node, "", "ignored"))

	var count int64
	require.NoError(t, db.Model(&authdomain.User{}).Count(&count).Error)
	assert.Zero(t, count)

	assert.Error(t, EnsureAdmin(db, node, "admin@example.com", ""))
	assert.Error(t, EnsureAdmin(nil, node, "admin@example.com", "secret"))
	assert.Error(t, EnsureAdmin(db, nil, "admin@example.com", "secret"))
}

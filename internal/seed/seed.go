// Package seed bootstraps the initial admin account for OSS installs.
package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
)

// EnsureAdmin creates the admin user named by SEED_ADMIN_EMAIL when no
// user with that email exists yet. A blank email disables seeding.
func EnsureAdmin(db *gorm.DB, node *snowflake.Node, email, plainPassword string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id node is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if plainPassword == "" {
		return errors.New("seed admin password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ctx := context.Background()
	user := &authdomain.User{
		ID:           node.Generate(),
		FirstName:    "Admin",
		LastName:     "User",
		Email:        email,
		PasswordHash: string(hash),
		Role:         authdomain.RoleAdmin,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(user).Error
}

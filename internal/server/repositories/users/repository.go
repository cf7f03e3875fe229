// Package users implements the identity store: persistence of user accounts
// with atomic enforcement of username and email uniqueness.
package users

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// ErrEmptyPasswordHash is returned when Create is called without a hash.
var ErrEmptyPasswordHash = errors.New("password hash is empty")

// Repository is the identity store contract.
//
// Create inserts the user in a single atomic step and reports
// common.ErrDuplicateIdentity when the username or the email is taken.
// Lookups return common.ErrorNotFound when nothing matches. Emails are
// normalized with models.NormalizeEmail on both write and read. List returns
// users ordered by id, newest first.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}

// Package users declares the repository contract for principal records.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository defines the storage operations the auth service needs. Email
// uniqueness is enforced at this boundary: Insert returns
// common.ErrAlreadyExists on a duplicate email, and lookups return
// common.ErrNotFound when the principal is absent.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

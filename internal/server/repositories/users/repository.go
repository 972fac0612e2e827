// Package users stores accounts in PostgreSQL.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Repository is the account store. Lookups return common.ErrorNotFound when
// no row matches; Create returns common.ErrConflict for a taken email. Other
// failures match common.ErrStore.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

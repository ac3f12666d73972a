package repositories

import (
	"context"

	"chemstore/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	GetWithOrders(ctx context.Context, id string) (*models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

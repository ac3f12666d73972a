package repositories

import (
	"context"
	"fmt"

	"chemstore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *GORMUserRepository) first(ctx context.Context, desc string, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("user with %s: %w", desc, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", desc, err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "ID "+id, "id = ?", id)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email "+email, "email = ?", email)
}

// GetByEmailOrPhone retrieves the user matching either identifier.
func (r *GORMUserRepository) GetByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	return r.first(ctx, fmt.Sprintf("email %q or phone %q", email, phone), "email = ? OR phoneno = ?", email, phone)
}

// GetWithOrders loads a user with their order history, newest first, including
// each order's items and checkout record.
func (r *GORMUserRepository) GetWithOrders(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Orders.Items").
		Preload("Orders.Checkout").
		First(&user, "id = ?", id).Error
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load orders of user %s: %w", id, err)
	}
	return &user, nil
}

// ListByRole returns every user holding role.
func (r *GORMUserRepository) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users with role %s: %w", role, err)
	}
	return users, nil
}

// Update persists every column of user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Omit("Orders").Save(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	return nil
}

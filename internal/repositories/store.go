package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned (wrapped) when a requested record doesn't exist.
var ErrNotFound = errors.New("not found")

// Store groups the repositories that share one database handle. WithTx runs fn
// against a Store bound to a single transaction; returning an error from fn
// rolls every write back.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// GORMStore is the GORM implementation of Store.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a Store backed by db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

func (s *GORMStore) Users() UserRepository       { return NewGORMUserRepository(s.db) }
func (s *GORMStore) Products() ProductRepository { return NewGORMProductRepository(s.db) }
func (s *GORMStore) Carts() CartRepository       { return NewGORMCartRepository(s.db) }
func (s *GORMStore) Orders() OrderRepository     { return NewGORMOrderRepository(s.db) }

// WithTx runs fn inside a database transaction.
func (s *GORMStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

// notFound maps gorm.ErrRecordNotFound onto ErrNotFound.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package db

import (
	"context"
	"errors"

	"github.com/ukydev/aivodrive/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrInvalidID     = errors.New("invalid id")
	ErrNilCollection = errors.New("mongo collection is nil")
	// ErrConflict is returned by the conditional writes when the document exists
	// but no longer matches the condition.
	ErrConflict      = errors.New("document changed")
)

// Query selects one page of documents.
type Query struct {
	Filter bson.M
	Page   int // 1-based
	Limit  int
	Sort   string
	Desc   bool
}

// Store defines the document operations shared by every fleet resource.
type Store[T any] interface {
	Find(ctx context.Context, q Query) ([]T, int64, error)
	FindByID(ctx context.Context, id string) (*T, error)
	Insert(ctx context.Context, doc T) (string, error)
	Update(ctx context.Context, id string, doc T) error
	// UpdateIf writes doc only while the stored document still matches cond.
	UpdateIf(ctx context.Context, id string, cond bson.M, doc T) error
	Delete(ctx context.Context, id string) error
	DeleteIf(ctx context.Context, id string, cond bson.M) error
	CountByStatus(ctx context.Context, filter bson.M) (models.Stats, error)
	CountBy(ctx context.Context, field string, filter bson.M) (map[string]int64, error)
	Sum(ctx context.Context, field string, filter bson.M) (float64, error)
}

// AlertCollection adds the read-state operations of alerts.
type AlertCollection interface {
	Store[models.Alert]
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) (string, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, user models.User) error
	UpdateLastLogin(ctx context.Context, id string) error
}

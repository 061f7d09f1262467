package store

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"roster/internal/models"
)

var (
	// ErrStorage wraps every failure of the underlying file or database.
	ErrStorage = errors.New("storage failure")
	// ErrInvalidFilter is returned for filter terms that cannot match any
	// valid record.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrEmptyTableName is returned by WithTableName("").
	ErrEmptyTableName = errors.New("empty table name supplied")
)

// Backend is the storage contract shared by the relational and XML stores.
type Backend interface {
	Add(ctx context.Context, p *models.Player) error
	List(ctx context.Context) ([]models.Player, error)
	Search(ctx context.Context, f Filter) ([]models.Player, error)
	Delete(ctx context.Context, f Filter) (int, error)
	Close() error
}

// TxRunner provides a transaction wrapper for repository operations.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

// Logger is satisfied by internal/log.Logger.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"roster/internal/models"
	"roster/internal/storage/schema"
)

const (
	DriverSQLite   = "sqlite"
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"

	defaultTableName = "players"
	colID            = "id"

	logMsgSQLExecuted = "executed sql"
	logAttrQuery      = "query"
	logAttrOp         = "op"
	logAttrRows       = "rows"
	logAttrDurationMS = "duration_ms"
)

var playerColumns = []any{
	colID,
	string(FieldFullName),
	string(FieldBirthDate),
	string(FieldFootballTeam),
	string(FieldHomeCity),
	string(FieldTeamType),
	string(FieldPosition),
}

var (
	_ Backend  = (*SQLStore)(nil)
	_ TxRunner = (*SQLStore)(nil)
)

// SQLStore is the relational backend. Each operation runs in its own
// transaction.
type SQLStore struct {
	db        *sqlx.DB
	dialect   goqu.DialectWrapper
	schema    schema.Dialect
	table     string
	returning bool
	logger    Logger
}

// Option configures an SQLStore.
type Option func(*SQLStore) error

// WithTableName overrides the players table name.
func WithTableName(name string) Option {
	return func(s *SQLStore) error {
		if name == "" {
			return ErrEmptyTableName
		}
		s.table = name
		return nil
	}
}

// WithLogger enables debug logging of generated SQL.
func WithLogger(l Logger) Option {
	return func(s *SQLStore) error {
		s.logger = l
		return nil
	}
}

// OpenSQL connects with driver (sqlite, pgx or postgres), migrates the
// schema and returns a ready store.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: database dsn required", ErrStorage)
	}
	s := &SQLStore{table: defaultTableName}
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		s.schema = schema.SQLite
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
	case DriverPGX, DriverPostgres:
		s.schema = schema.Postgres
		s.returning = true
	default:
		return nil, fmt.Errorf("%w: unsupported driver %q", ErrStorage, driver)
	}
	s.dialect = goqu.Dialect(string(s.schema))
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := (schema.Manager{Dialect: s.schema, Table: s.table}).UpToLatest(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.db = db
	return s, nil
}

// DB exposes the underlying handle for tests and maintenance commands.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

func (s *SQLStore) Close() error { return s.db.Close() }

// WithTx commits on nil error and rolls back otherwise. The callback must
// not hold the tx beyond return.
func (s *SQLStore) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) Add(ctx context.Context, p *models.Player) error {
	insert := s.dialect.Insert(s.table).Prepared(true).Rows(goqu.Record{
		string(FieldFullName):     p.FullName,
		string(FieldBirthDate):    p.BirthDate.String(),
		string(FieldFootballTeam): p.FootballTeam,
		string(FieldHomeCity):     p.HomeCity,
		string(FieldTeamType):     string(p.TeamType),
		string(FieldPosition):     string(p.Position),
	})
	if s.returning {
		insert = insert.Returning(colID)
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("%w: build insert: %w", ErrStorage, err)
	}

	start := time.Now()
	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if s.returning {
			return tx.QueryRowxContext(ctx, query, args...).Scan(&p.ID)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: insert player: %w", ErrStorage, err)
	}
	s.logSQL("add", query, 1, start)
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]models.Player, error) {
	return s.Search(ctx, nil)
}

// Search returns players matching f ordered by id. An empty filter
// returns every player.
func (s *SQLStore) Search(ctx context.Context, f Filter) ([]models.Player, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	sel := s.dialect.From(s.table).Prepared(true).Select(playerColumns...).Order(goqu.C(colID).Asc())
	if !f.IsEmpty() {
		sel = sel.Where(s.where(f))
	}
	query, args, err := sel.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("%w: build select: %w", ErrStorage, err)
	}

	start := time.Now()
	out := []models.Player{}
	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &out, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: select players: %w", ErrStorage, err)
	}
	s.logSQL("search", query, len(out), start)
	return out, nil
}

// Delete removes players matching f. An empty filter deletes nothing.
func (s *SQLStore) Delete(ctx context.Context, f Filter) (int, error) {
	if f.IsEmpty() {
		return 0, nil
	}
	if err := f.Validate(); err != nil {
		return 0, err
	}
	query, args, err := s.dialect.Delete(s.table).Prepared(true).Where(s.where(f)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("%w: build delete: %w", ErrStorage, err)
	}

	start := time.Now()
	var n int64
	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: delete players: %w", ErrStorage, err)
	}
	s.logSQL("delete", query, int(n), start)
	return int(n), nil
}

// where compiles f into AND(OR(term...)...), mirroring Filter.Matches.
func (s *SQLStore) where(f Filter) exp.Expression {
	all := make([]exp.Expression, 0, len(f))
	for _, c := range f {
		anyOf := make([]exp.Expression, 0, len(c))
		for _, t := range c {
			col := goqu.C(string(t.Field))
			switch t.Op {
			case Contains:
				anyOf = append(anyOf, col.ILike("%"+t.Value+"%"))
			case Equals:
				anyOf = append(anyOf, col.Eq(t.Value))
			default:
				anyOf = append(anyOf, goqu.Func("LOWER", col).Eq(strings.ToLower(t.Value)))
			}
		}
		all = append(all, goqu.Or(anyOf...))
	}
	return goqu.And(all...)
}

func (s *SQLStore) logSQL(op, query string, rows int, start time.Time) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(logMsgSQLExecuted,
		logAttrOp, op,
		logAttrQuery, query,
		logAttrRows, rows,
		logAttrDurationMS, time.Since(start).Milliseconds(),
	)
}

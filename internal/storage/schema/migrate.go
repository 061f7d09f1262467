package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"roster/internal/models"
)

// Dialect selects the DDL flavour.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// Execer is satisfied by *sql.DB and *sqlx.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Manager handles schema versioning for the players table.
type Manager struct {
	Dialect Dialect
	Table   string
}

const latestVersion = 3

// v1 stored the not-applicable team type as NA; v3 renames it.
var v1TeamTypes = []string{"MAIN", "RESERVE", "NA"}

func (m Manager) table() string {
	if m.Table == "" {
		return "players"
	}
	return m.Table
}

func (m Manager) placeholder() string {
	if m.Dialect == Postgres {
		return "$1"
	}
	return "?"
}

func (m Manager) ensureTable(ctx context.Context, db Execer) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER NOT NULL);`)
	if err != nil {
		return err
	}
	// initialize row if empty
	var cnt int
	_ = db.QueryRowContext(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&cnt)
	if cnt == 0 {
		_, err = db.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES(0)`)
	}
	return err
}

// Version reports the applied schema version.
func (m Manager) Version(ctx context.Context, db Execer) (int, error) {
	if err := m.ensureTable(ctx, db); err != nil {
		return 0, err
	}
	var v int
	if err := db.QueryRowContext(ctx, `SELECT version FROM schema_migrations`).Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

func (m Manager) setVersion(ctx context.Context, db Execer, v int) error {
	_, err := db.ExecContext(ctx, `UPDATE schema_migrations SET version=`+m.placeholder(), v)
	return err
}

// UpToLatest applies migrations to reach latestVersion.
func (m Manager) UpToLatest(ctx context.Context, db Execer) error {
	cur, err := m.Version(ctx, db)
	if err != nil {
		return err
	}
	for v := cur + 1; v <= latestVersion; v++ {
		if err := m.up(ctx, db, v); err != nil {
			return fmt.Errorf("migrate up to v%d: %w", v, err)
		}
		if err := m.setVersion(ctx, db, v); err != nil {
			return err
		}
	}
	return nil
}

// DownOne rolls back the last migration if supported.
func (m Manager) DownOne(ctx context.Context, db Execer) error {
	cur, err := m.Version(ctx, db)
	if err != nil {
		return err
	}
	if cur <= 0 {
		return nil
	}
	if err := m.down(ctx, db, cur); err != nil {
		return err
	}
	return m.setVersion(ctx, db, cur-1)
}

func (m Manager) up(ctx context.Context, db Execer, v int) error {
	var stmts []string
	switch v {
	case 1:
		stmts = []string{m.createPlayers(m.table(), v1TeamTypes)}
	case 2:
		t := m.table()
		stmts = []string{
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_full_name ON %s(full_name);`, t, t),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_birth_date ON %s(birth_date);`, t, t),
		}
	case 3:
		stmts = m.retypeTeamType(teamTypeNames(), "NA", "NOT_APPLICABLE")
	default:
		return fmt.Errorf("unknown migration version %d", v)
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("v%d step %d: %w", v, i, err)
		}
	}
	return nil
}

func (m Manager) down(ctx context.Context, db Execer, v int) error {
	switch v {
	case 2:
		t := m.table()
		for _, s := range []string{
			fmt.Sprintf(`DROP INDEX IF EXISTS idx_%s_birth_date;`, t),
			fmt.Sprintf(`DROP INDEX IF EXISTS idx_%s_full_name;`, t),
		} {
			if _, err := db.ExecContext(ctx, s); err != nil {
				return err
			}
		}
		return nil
	case 3:
		for _, s := range m.retypeTeamType(v1TeamTypes, "NOT_APPLICABLE", "NA") {
			if _, err := db.ExecContext(ctx, s); err != nil {
				return err
			}
		}
		return nil
	case 1:
		return errors.New("down from v1 not supported")
	default:
		return fmt.Errorf("unknown migration version %d", v)
	}
}

func (m Manager) createPlayers(table string, teamTypes []string) string {
	id := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	birth := "birth_date TEXT NOT NULL"
	if m.Dialect == Postgres {
		id = "id BIGSERIAL PRIMARY KEY"
		birth = "birth_date DATE NOT NULL"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            %s,
            full_name VARCHAR(%d) NOT NULL,
            %s,
            football_team VARCHAR(%d) NOT NULL DEFAULT '',
            home_city VARCHAR(%d) NOT NULL DEFAULT '',
            team_type VARCHAR(16) NOT NULL CHECK (team_type IN (%s)),
            position VARCHAR(16) NOT NULL CHECK (position IN (%s))
        );`, table, id, models.MaxFullNameLen, birth, models.MaxTeamLen, models.MaxCityLen,
		quoted(teamTypes), quoted(models.AllPositions()))
}

func teamTypeNames() []string {
	out := make([]string, 0, 3)
	for _, t := range models.AllTeamTypes() {
		out = append(out, string(t))
	}
	return out
}

// retypeTeamType swaps the team_type CHECK set and renames oldName rows to
// newName. SQLite cannot alter a CHECK constraint, so the table is rebuilt
// and its indexes recreated.
func (m Manager) retypeTeamType(to []string, oldName, newName string) []string {
	t := m.table()
	if m.Dialect == Postgres {
		return []string{
			fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_team_type_check;`, t, t),
			fmt.Sprintf(`UPDATE %s SET team_type = '%s' WHERE team_type = '%s';`, t, newName, oldName),
			fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s_team_type_check CHECK (team_type IN (%s));`, t, t, quoted(to)),
		}
	}
	tmp := t + "_rebuild"
	cols := "id, full_name, birth_date, football_team, home_city, team_type, position"
	return []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, tmp),
		m.createPlayers(tmp, to),
		fmt.Sprintf(`INSERT INTO %s (%s) SELECT id, full_name, birth_date, football_team, home_city,
            CASE team_type WHEN '%s' THEN '%s' ELSE team_type END, position FROM %s;`, tmp, cols, oldName, newName, t),
		fmt.Sprintf(`DROP TABLE %s;`, t),
		fmt.Sprintf(`ALTER TABLE %s RENAME TO %s;`, tmp, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_full_name ON %s(full_name);`, t, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_birth_date ON %s(birth_date);`, t, t),
	}
}

func quoted[T ~string](names []T) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "'" + string(n) + "'"
	}
	return strings.Join(out, ",")
}

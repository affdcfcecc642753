// Package sqlstore implements every repository on database/sql, for both
// SQLite (modernc.org/sqlite) and PostgreSQL (pgx). Queries are written with
// ? placeholders and rebound to $n for PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jrsteele09/lia-server/favorites"
	"github.com/jrsteele09/lia-server/internal/sqlstore/migrations"
	"github.com/jrsteele09/lia-server/invites"
	"github.com/jrsteele09/lia-server/lists"
	"github.com/jrsteele09/lia-server/sessions"
	"github.com/jrsteele09/lia-server/users"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour and database/sql driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store owns the database handle and vends the repositories.
type Store struct {
	db      *sql.DB
	dialect Dialect
	nowTime func() time.Time
}

// Open connects to the database for dialect. SQLite is limited to a single
// connection so writers never contend for the file lock.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	var driver string
	switch dialect {
	case DialectSQLite:
		driver = "sqlite"
	case DialectPostgres:
		driver = "pgx"
	default:
		return nil, errors.Errorf("[sqlstore Open] unsupported dialect %q", dialect)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlstore Open] db open error")
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlstore Open] db ping error")
	}
	return New(db, dialect), nil
}

// New wraps an existing connection.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, nowTime: time.Now}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	gooseDialect := "sqlite3"
	if s.dialect == DialectPostgres {
		gooseDialect = "pgx"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return errors.Wrap(err, "[Store Migrate] dialect")
	}
	if err := gooseUpContext(ctx, s.db, "."); err != nil {
		return errors.Wrap(err, "[Store Migrate] migration error")
	}
	return nil
}

func (s *Store) Users() users.Repo {
	return &userRepo{store: s}
}

func (s *Store) Sessions() sessions.Repo {
	return &sessionRepo{store: s}
}

func (s *Store) Lists() lists.Repo {
	return &listRepo{store: s}
}

func (s *Store) Items() lists.ItemRepo {
	return &itemRepo{store: s}
}

func (s *Store) Invites() invites.Repo {
	return &inviteRepo{store: s}
}

func (s *Store) Joined() invites.JoinedRepo {
	return &joinedRepo{store: s}
}

func (s *Store) Favorites() favorites.Repo {
	return &favoriteRepo{store: s}
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) now() string {
	return formatTime(s.nowTime())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid stored time %q", value)
	}
	return t, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// emptyNull stores an empty string as NULL.
func emptyNull(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

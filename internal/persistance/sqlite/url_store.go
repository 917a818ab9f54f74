package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/nestjam/tinyurl/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS url_mapping (
	short_code TEXT PRIMARY KEY,
	long_url TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS url_mapping_long_url_idx ON url_mapping (long_url);`

// URLStore хранит сокращенные ссылки в базе данных SQLite.
type URLStore struct {
	db *sql.DB
	mu sync.Mutex
}

var _ domain.URLStore = &URLStore{}

// New открывает базу данных и создает таблицу ссылок.
func New(ctx context.Context, dsn string) (*URLStore, error) {
	const op = "new sqlite store"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, op)
	}

	return &URLStore{db: db}, nil
}

func (u *URLStore) Close() error {
	return errors.Wrap(u.db.Close(), "close sqlite store")
}

func (u *URLStore) FindByShortCode(ctx context.Context, code string) (domain.URLMapping, error) {
	const op = "find by short code"

	u.mu.Lock()
	defer u.mu.Unlock()

	mapping := domain.URLMapping{ShortCode: code}
	err := u.db.QueryRowContext(ctx, "SELECT long_url FROM url_mapping WHERE short_code = ?", code).
		Scan(&mapping.LongURL)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.URLMapping{}, domain.ErrMappingNotFound
	}
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	return mapping, nil
}

func (u *URLStore) FindByLongURL(ctx context.Context, longURL string) (domain.URLMapping, error) {
	const op = "find by long url"

	u.mu.Lock()
	defer u.mu.Unlock()

	mapping := domain.URLMapping{LongURL: longURL}
	err := u.db.QueryRowContext(ctx,
		"SELECT short_code FROM url_mapping WHERE long_url = ? ORDER BY created_at, rowid LIMIT 1", longURL).
		Scan(&mapping.ShortCode)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.URLMapping{}, domain.ErrMappingNotFound
	}
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	return mapping, nil
}

func (u *URLStore) Insert(ctx context.Context, mapping domain.URLMapping) error {
	const op = "insert mapping"

	u.mu.Lock()
	defer u.mu.Unlock()

	_, err := u.db.ExecContext(ctx, "INSERT INTO url_mapping (short_code, long_url) VALUES (?, ?)",
		mapping.ShortCode, mapping.LongURL)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return domain.ErrShortCodeExists
	}
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *URLStore) GetAll(ctx context.Context) ([]domain.URLMapping, error) {
	const op = "get all mappings"

	u.mu.Lock()
	defer u.mu.Unlock()

	rows, err := u.db.QueryContext(ctx, "SELECT short_code, long_url FROM url_mapping")
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer func() {
		_ = rows.Close()
	}()

	var mappings []domain.URLMapping
	for rows.Next() {
		var m domain.URLMapping
		if err := rows.Scan(&m.ShortCode, &m.LongURL); err != nil {
			return nil, errors.Wrap(err, op)
		}
		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return mappings, nil
}

func (u *URLStore) Delete(ctx context.Context, codes []string) error {
	const op = "delete mappings"

	u.mu.Lock()
	defer u.mu.Unlock()

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, op)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM url_mapping WHERE short_code = ?")
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, code := range codes {
		if _, err := stmt.ExecContext(ctx, code); err != nil {
			return errors.Wrap(err, op)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *URLStore) IsAvailable(ctx context.Context) bool {
	return u.db.PingContext(ctx) == nil
}

package pgsql

import (
	"context"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/nestjam/tinyurl/internal/domain"
)

// URLStore хранит сокращенные ссылки в PostgreSQL.
type URLStore struct {
	pool       *pgxpool.Pool
	connString string
}

func New(connString string) *URLStore {
	return &URLStore{
		connString: connString,
	}
}

// Init применяет миграции и открывает пул соединений.
func (u *URLStore) Init(ctx context.Context) error {
	const op = "init store"

	if err := NewURLStoreMigrator(u.connString).Up(); err != nil {
		return errors.Wrap(err, op)
	}

	pool, err := initPool(ctx, u.connString)
	if err != nil {
		return errors.Wrap(err, op)
	}

	u.pool = pool
	return nil
}

func (u *URLStore) Close() {
	if u.pool == nil {
		return
	}
	u.pool.Close()
}

func initPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	const op = "init connection pool"

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	return pool, nil
}

func (u *URLStore) FindByShortCode(ctx context.Context, code string) (domain.URLMapping, error) {
	const op = "find by short code"

	mapping := domain.URLMapping{ShortCode: code}
	row := u.pool.QueryRow(ctx, "SELECT long_url FROM url_mapping WHERE short_code=$1", code)
	err := row.Scan(&mapping.LongURL)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.URLMapping{}, domain.ErrMappingNotFound
	}
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	return mapping, nil
}

func (u *URLStore) FindByLongURL(ctx context.Context, longURL string) (domain.URLMapping, error) {
	const op = "find by long url"

	mapping := domain.URLMapping{LongURL: longURL}
	row := u.pool.QueryRow(ctx,
		"SELECT short_code FROM url_mapping WHERE long_url=$1 ORDER BY created_at LIMIT 1", longURL)
	err := row.Scan(&mapping.ShortCode)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.URLMapping{}, domain.ErrMappingNotFound
	}
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	return mapping, nil
}

func (u *URLStore) Insert(ctx context.Context, mapping domain.URLMapping) error {
	const op = "insert mapping"

	_, err := u.pool.Exec(ctx, "INSERT INTO url_mapping (short_code, long_url) VALUES ($1, $2)",
		mapping.ShortCode, mapping.LongURL)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return domain.ErrShortCodeExists
	}
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *URLStore) GetAll(ctx context.Context) ([]domain.URLMapping, error) {
	const op = "get all mappings"

	rows, err := u.pool.Query(ctx, "SELECT short_code, long_url FROM url_mapping")
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	mappings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.URLMapping, error) {
		var m domain.URLMapping
		err := row.Scan(&m.ShortCode, &m.LongURL)
		return m, err
	})
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return mappings, nil
}

func (u *URLStore) Delete(ctx context.Context, codes []string) error {
	const op = "delete mappings"

	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, op)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "DELETE FROM url_mapping WHERE short_code = ANY($1)", codes); err != nil {
		return errors.Wrap(err, op)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *URLStore) IsAvailable(ctx context.Context) bool {
	if u.pool == nil {
		return false
	}

	return u.pool.Ping(ctx) == nil
}

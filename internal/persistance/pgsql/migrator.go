package pgsql

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
)

//go:embed migration/*.sql
var migrationsDir embed.FS

// URLStoreMigrator применяет к базе данных схему хранилища ссылок.
type URLStoreMigrator struct {
	connString string
}

func NewURLStoreMigrator(connString string) *URLStoreMigrator {
	return &URLStoreMigrator{connString: connString}
}

// Up применяет все миграции. Актуальная схема не считается ошибкой.
func (u *URLStoreMigrator) Up() error {
	const op = "migrate up"

	m, err := u.migrate()
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, op)
	}

	return nil
}

// Down откатывает все миграции.
func (u *URLStoreMigrator) Down() error {
	const op = "migrate down"

	m, err := u.migrate()
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *URLStoreMigrator) migrate() (*migrate.Migrate, error) {
	const (
		op             = "create migrate"
		migrationsPath = "migration"
	)

	d, err := iofs.New(migrationsDir, migrationsPath)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, u.connString)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	_, _ = m.Close()
}

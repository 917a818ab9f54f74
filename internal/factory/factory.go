// Package factory создает зависимости сервера по конфигурации.
package factory

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	conf "github.com/nestjam/tinyurl/internal/config"
	"github.com/nestjam/tinyurl/internal/domain"
	f "github.com/nestjam/tinyurl/internal/persistance/file"
	"github.com/nestjam/tinyurl/internal/persistance/inmemory"
	"github.com/nestjam/tinyurl/internal/persistance/mongodb"
	"github.com/nestjam/tinyurl/internal/persistance/pgsql"
	"github.com/nestjam/tinyurl/internal/persistance/sqlite"
)

// NewStorage создает хранилище ссылок. Выбирается первое настроенное хранилище
// в порядке PostgreSQL, MongoDB, SQLite, файл; если ничего не задано, ссылки хранятся в памяти.
func NewStorage(ctx context.Context, conf conf.Config, logger *zap.Logger) (domain.URLStore, func(), error) {
	const op = "new storage"

	switch {
	case conf.DataSourceName != "":
		logger.Info("Using PostgreSQL storage")
		store := pgsql.New(conf.DataSourceName)
		if err := store.Init(ctx); err != nil {
			return nil, nil, errors.Wrap(err, op)
		}
		return store, store.Close, nil

	case conf.MongoURI != "":
		logger.Info("Using MongoDB storage")
		store, err := mongodb.New(ctx, conf.MongoURI)
		if err != nil {
			return nil, nil, errors.Wrap(err, op)
		}
		return store, func() { _ = store.Close(context.Background()) }, nil

	case conf.SQLitePath != "":
		logger.Info("Using SQLite storage", zap.String("path", conf.SQLitePath))
		store, err := sqlite.New(ctx, conf.SQLitePath)
		if err != nil {
			return nil, nil, errors.Wrap(err, op)
		}
		return store, func() { _ = store.Close() }, nil

	case conf.FileStoragePath != "":
		logger.Info("Using file storage", zap.String("path", conf.FileStoragePath))
		store, closeFile, err := newFileStorage(conf.FileStoragePath)
		if err != nil {
			return nil, nil, errors.Wrap(err, op)
		}
		return store, closeFile, nil
	}

	logger.Info("Using in-memory storage")
	return inmemory.New(), func() {}, nil
}

func newFileStorage(path string) (domain.URLStore, func(), error) {
	const ownerReadWritePermission os.FileMode = 0600

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, ownerReadWritePermission)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open file")
	}

	store, err := f.New(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, errors.Wrap(err, "create file storage")
	}

	return store, func() { _ = file.Close() }, nil
}

// NewLogger создает логер с production настройками zap и заданным уровнем.
func NewLogger(level string) (*zap.Logger, func(), error) {
	const op = "new logger"

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	config := zap.NewProductionConfig()
	config.Level = lvl
	logger, err := config.Build()
	if err != nil {
		return nil, nil, errors.Wrap(err, op)
	}

	return logger, func() { _ = logger.Sync() }, nil
}

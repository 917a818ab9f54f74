package domain

import "context"

// URLMapping связывает сокращенный код с исходным URL.
type URLMapping struct {
	ShortCode string // сокращенный код, уникален в хранилище
	LongURL   string // исходный URL
}

// URLStore определяет долговременное хранилище сокращенных ссылок.
type URLStore interface {
	FindByShortCode(ctx context.Context, code string) (URLMapping, error)
	FindByLongURL(ctx context.Context, longURL string) (URLMapping, error)
	Insert(ctx context.Context, mapping URLMapping) error
	GetAll(ctx context.Context) ([]URLMapping, error)
	Delete(ctx context.Context, codes []string) error
	IsAvailable(ctx context.Context) bool
}

package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/nestjam/tinyurl/internal/domain"
)

// InmemoryURLStore хранит сокращенные ссылки в памяти процесса.
type InmemoryURLStore struct {
	byCode    map[string]string
	byLongURL map[string][]string // коды в порядке добавления
	mu        sync.RWMutex
}

func New() *InmemoryURLStore {
	return &InmemoryURLStore{
		byCode:    make(map[string]string),
		byLongURL: make(map[string][]string),
	}
}

func (u *InmemoryURLStore) FindByShortCode(ctx context.Context, code string) (domain.URLMapping, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	longURL, ok := u.byCode[code]
	if !ok {
		return domain.URLMapping{}, domain.ErrMappingNotFound
	}

	return domain.URLMapping{ShortCode: code, LongURL: longURL}, nil
}

func (u *InmemoryURLStore) FindByLongURL(ctx context.Context, longURL string) (domain.URLMapping, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	codes := u.byLongURL[longURL]
	if len(codes) == 0 {
		return domain.URLMapping{}, domain.ErrMappingNotFound
	}

	return domain.URLMapping{ShortCode: codes[0], LongURL: longURL}, nil
}

func (u *InmemoryURLStore) Insert(ctx context.Context, mapping domain.URLMapping) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.byCode[mapping.ShortCode]; ok {
		return domain.ErrShortCodeExists
	}

	u.byCode[mapping.ShortCode] = mapping.LongURL
	u.byLongURL[mapping.LongURL] = append(u.byLongURL[mapping.LongURL], mapping.ShortCode)
	return nil
}

func (u *InmemoryURLStore) GetAll(ctx context.Context) ([]domain.URLMapping, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	mappings := make([]domain.URLMapping, 0, len(u.byCode))
	for code, longURL := range u.byCode {
		mappings = append(mappings, domain.URLMapping{ShortCode: code, LongURL: longURL})
	}

	return mappings, nil
}

func (u *InmemoryURLStore) Delete(ctx context.Context, codes []string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, code := range codes {
		longURL, ok := u.byCode[code]
		if !ok {
			continue
		}

		delete(u.byCode, code)

		rest := slices.DeleteFunc(u.byLongURL[longURL], func(c string) bool { return c == code })
		if len(rest) == 0 {
			delete(u.byLongURL, longURL)
		} else {
			u.byLongURL[longURL] = rest
		}
	}

	return nil
}

func (u *InmemoryURLStore) IsAvailable(ctx context.Context) bool {
	return true
}


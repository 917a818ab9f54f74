package file

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nestjam/tinyurl/internal/domain"
	"github.com/nestjam/tinyurl/internal/persistance/inmemory"
)

// FileURLStore хранит сокращенные ссылки в памяти и дописывает каждое изменение
// в журнал формата JSON Lines. При создании журнал читается целиком.
type FileURLStore struct {
	encoder *json.Encoder
	s       *inmemory.InmemoryURLStore
	mu      sync.Mutex
}

// StoredURL является записью журнала. Запись с IsDeleted отменяет ранее сохраненную ссылку.
type StoredURL struct {
	ID        string `json:"uuid"`
	ShortCode string `json:"short_code"`
	LongURL   string `json:"long_url"`
	IsDeleted bool   `json:"is_deleted,omitempty"`
}

func New(rw io.ReadWriter) (*FileURLStore, error) {
	const op = "new file storage"

	records, err := readURLs(rw)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	s := inmemory.New()
	if err := replay(s, records); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return &FileURLStore{
		encoder: json.NewEncoder(rw),
		s:       s,
	}, nil
}

func readURLs(rw io.Reader) ([]StoredURL, error) {
	dec := json.NewDecoder(rw)
	var urls []StoredURL

	for dec.More() {
		var url StoredURL
		if err := dec.Decode(&url); err != nil {
			return nil, errors.Wrap(err, "read urls")
		}

		urls = append(urls, url)
	}

	return urls, nil
}

func replay(s *inmemory.InmemoryURLStore, records []StoredURL) error {
	ctx := context.Background()

	for _, rec := range records {
		if rec.IsDeleted {
			_ = s.Delete(ctx, []string{rec.ShortCode})
			continue
		}

		mapping := domain.URLMapping{ShortCode: rec.ShortCode, LongURL: rec.LongURL}
		if err := s.Insert(ctx, mapping); err != nil {
			return errors.Wrapf(err, "replay record %s", rec.ID)
		}
	}

	return nil
}

func (u *FileURLStore) FindByShortCode(ctx context.Context, code string) (domain.URLMapping, error) {
	const op = "find by short code"

	mapping, err := u.s.FindByShortCode(ctx, code)
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	return mapping, nil
}

func (u *FileURLStore) FindByLongURL(ctx context.Context, longURL string) (domain.URLMapping, error) {
	const op = "find by long url"

	mapping, err := u.s.FindByLongURL(ctx, longURL)
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	return mapping, nil
}

func (u *FileURLStore) Insert(ctx context.Context, mapping domain.URLMapping) error {
	const op = "insert mapping"

	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.s.Insert(ctx, mapping); err != nil {
		return errors.Wrap(err, op)
	}

	rec := StoredURL{
		ID:        uuid.NewString(),
		ShortCode: mapping.ShortCode,
		LongURL:   mapping.LongURL,
	}
	if err := u.encoder.Encode(rec); err != nil {
		_ = u.s.Delete(ctx, []string{mapping.ShortCode})
		return errors.Wrap(err, op)
	}

	return nil
}

func (u *FileURLStore) GetAll(ctx context.Context) ([]domain.URLMapping, error) {
	return u.s.GetAll(ctx)
}

func (u *FileURLStore) Delete(ctx context.Context, codes []string) error {
	const op = "delete mappings"

	u.mu.Lock()
	defer u.mu.Unlock()

	for _, code := range codes {
		mapping, err := u.s.FindByShortCode(ctx, code)
		if errors.Is(err, domain.ErrMappingNotFound) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, op)
		}

		rec := StoredURL{
			ID:        uuid.NewString(),
			ShortCode: mapping.ShortCode,
			LongURL:   mapping.LongURL,
			IsDeleted: true,
		}
		if err := u.encoder.Encode(rec); err != nil {
			return errors.Wrap(err, op)
		}

		if err := u.s.Delete(ctx, []string{code}); err != nil {
			return errors.Wrap(err, op)
		}
	}

	return nil
}

func (u *FileURLStore) IsAvailable(ctx context.Context) bool {
	return true
}

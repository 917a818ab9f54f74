package domain

import (
	"context"
	"fmt"
)

// A URLStoreDelegate allows to extend the behavior of the test double for negative scenarios
// for URLStore consumers.
type URLStoreDelegate struct {
	FindByShortCodeFunc func(ctx context.Context, code string) (URLMapping, error)
	FindByLongURLFunc   func(ctx context.Context, longURL string) (URLMapping, error)
	InsertFunc          func(ctx context.Context, mapping URLMapping) error
	GetAllFunc          func(ctx context.Context) ([]URLMapping, error)
	DeleteFunc          func(ctx context.Context, codes []string) error
	IsAvailableFunc     func(ctx context.Context) bool
	delegate            URLStore
}

func NewURLStoreDelegate(delegate URLStore) *URLStoreDelegate {
	return &URLStoreDelegate{delegate: delegate}
}

func (u *URLStoreDelegate) FindByShortCode(ctx context.Context, code string) (URLMapping, error) {
	if u.FindByShortCodeFunc != nil {
		return u.FindByShortCodeFunc(ctx, code)
	}
	mapping, err := u.delegate.FindByShortCode(ctx, code)

	if err != nil {
		return URLMapping{}, fmt.Errorf("find by short code in store delegate: %w", err)
	}

	return mapping, nil
}

func (u *URLStoreDelegate) FindByLongURL(ctx context.Context, longURL string) (URLMapping, error) {
	if u.FindByLongURLFunc != nil {
		return u.FindByLongURLFunc(ctx, longURL)
	}
	mapping, err := u.delegate.FindByLongURL(ctx, longURL)

	if err != nil {
		return URLMapping{}, fmt.Errorf("find by long url in store delegate: %w", err)
	}

	return mapping, nil
}

func (u *URLStoreDelegate) Insert(ctx context.Context, mapping URLMapping) error {
	if u.InsertFunc != nil {
		return u.InsertFunc(ctx, mapping)
	}
	err := u.delegate.Insert(ctx, mapping)

	if err != nil {
		return fmt.Errorf("insert to store delegate: %w", err)
	}

	return nil
}

func (u *URLStoreDelegate) GetAll(ctx context.Context) ([]URLMapping, error) {
	if u.GetAllFunc != nil {
		return u.GetAllFunc(ctx)
	}

	return u.delegate.GetAll(ctx)
}

func (u *URLStoreDelegate) Delete(ctx context.Context, codes []string) error {
	if u.DeleteFunc != nil {
		return u.DeleteFunc(ctx, codes)
	}
	err := u.delegate.Delete(ctx, codes)

	if err != nil {
		return fmt.Errorf("delete from store delegate: %w", err)
	}

	return nil
}

func (u *URLStoreDelegate) IsAvailable(ctx context.Context) bool {
	if u.IsAvailableFunc != nil {
		return u.IsAvailableFunc(ctx)
	}

	return u.delegate.IsAvailable(ctx)
}

package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type urlsDeleter interface {
	RemoveURLs(ctx context.Context, codes []string) error
}

// URLRemover удаляет сокращенные ссылки в фоновой горутине.
type URLRemover struct {
	deleteCh chan []string
	doneCh   <-chan struct{}
}

// NewURLRemover создает компонент удаления и запускает обработчик,
// который работает до закрытия doneCh.
func NewURLRemover(ctx context.Context, doneCh <-chan struct{}, deleter urlsDeleter, log *zap.Logger) *URLRemover {
	r := &URLRemover{
		deleteCh: make(chan []string),
		doneCh:   doneCh,
	}

	go func() {
		for {
			select {
			case <-r.doneCh:
				return
			case codes := <-r.deleteCh:
				err := deleter.RemoveURLs(ctx, codes)
				if err != nil {
					log.Error(err.Error(), zap.Strings("codes", codes))
				}
			}
		}
	}()

	return r
}

// DeleteURLs ставит ссылки в очередь на удаление.
func (r *URLRemover) DeleteURLs(codes []string) error {
	select {
	case <-r.doneCh:
		return errors.New("channel is closed")
	default:
	}

	go func() {
		select {
		case r.deleteCh <- codes:
		case <-r.doneCh:
		}
	}()

	return nil
}

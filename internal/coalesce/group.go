// Package coalesce объединяет конкурентные запросы с одинаковым ключом в одно вычисление.
package coalesce

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// ResolveFunc вычисляет значение для ключа.
type ResolveFunc[V any] func(ctx context.Context) (V, error)

// Group гарантирует, что для каждого ключа выполняется не более одного вычисления.
// Все вызывающие, пришедшие до его завершения, получают один и тот же результат.
// После завершения (успешного или с ошибкой) ключ удаляется из реестра,
// и следующий вызов начинает новое вычисление.
//
// Нулевое значение Group готово к использованию.
type Group[V any] struct {
	flights singleflight.Group
}

// Resolve возвращает результат вычисления fn для key. Признак shared равен true,
// если результат был получен не только этим вызывающим.
//
// Вычисление выполняется с контекстом без отмены: вызывающий, чей ctx отменен,
// перестает ждать и получает ctx.Err(), а вычисление завершается для остальных.
func (g *Group[V]) Resolve(ctx context.Context, key string, fn ResolveFunc[V]) (value V, shared bool, err error) {
	const op = "resolve"

	flightCtx := context.WithoutCancel(ctx)
	ch := g.flights.DoChan(key, func() (any, error) {
		return fn(flightCtx)
	})

	select {
	case <-ctx.Done():
		return value, false, errors.Wrap(ctx.Err(), op)
	case res := <-ch:
		if res.Err != nil {
			return value, res.Shared, res.Err
		}

		v, ok := res.Val.(V)
		if !ok {
			return value, res.Shared, errors.Errorf("%s: unexpected result type %T", op, res.Val)
		}

		return v, res.Shared, nil
	}
}

// Forget удаляет ключ из реестра, не дожидаясь завершения текущего вычисления.
func (g *Group[V]) Forget(key string) {
	g.flights.Forget(key)
}

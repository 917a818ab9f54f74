// Package shortener вычисляет сокращенные коды для исходных URL.
package shortener

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

const (
	CodeLength         = 6   // длина сокращенного кода
	CollisionMarker    = "1" // добавляется к исходной строке при коллизии
	DefaultMaxAttempts = 10  // количество попыток подобрать свободный код по умолчанию
)

// ErrGenerationExhausted возвращается, когда все попытки подобрать свободный код завершились коллизией.
var ErrGenerationExhausted = errors.New("short code generation attempts exhausted")

// ExistsFunc сообщает, занят ли код в хранилище.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// CollisionFunc вызывается при каждой обнаруженной коллизии.
type CollisionFunc func(code string, attempt int)

// Generator подбирает свободный сокращенный код для исходного URL.
type Generator struct {
	onCollision CollisionFunc
	maxAttempts int
}

// Option определяет опцию настройки генератора.
type Option func(*Generator)

// WithMaxAttempts задает максимальное количество попыток подобрать свободный код.
func WithMaxAttempts(attempts int) Option {
	return func(g *Generator) {
		if attempts > 0 {
			g.maxAttempts = attempts
		}
	}
}

// WithCollisionHandler задает обработчик коллизий.
func WithCollisionHandler(f CollisionFunc) Option {
	return func(g *Generator) {
		g.onCollision = f
	}
}

// NewGenerator создает генератор с указанными опциями.
func NewGenerator(options ...Option) *Generator {
	g := &Generator{
		maxAttempts: DefaultMaxAttempts,
		onCollision: func(string, int) {},
	}

	for _, opt := range options {
		opt(g)
	}

	return g
}

// Candidate возвращает код для строки: первые CodeLength символов
// SHA-256 хеша в URL-безопасной кодировке base64.
func Candidate(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.URLEncoding.EncodeToString(sum[:])[:CodeLength]
}

// Generate возвращает первый свободный код для longURL. При коллизии к исходной строке
// добавляется CollisionMarker и хеш вычисляется заново.
func (g *Generator) Generate(ctx context.Context, longURL string, exists ExistsFunc) (string, error) {
	const op = "generate short code"

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code := Candidate(longURL + strings.Repeat(CollisionMarker, attempt))

		taken, err := exists(ctx, code)
		if err != nil {
			return "", errors.Wrap(err, op)
		}

		if !taken {
			return code, nil
		}

		g.onCollision(code, attempt)
	}

	return "", errors.Wrap(ErrGenerationExhausted, op)
}

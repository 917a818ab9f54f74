// Package environment предоставляет доступ к переменным среды процесса.
package environment

import "os"

// Environment читает переменные среды процесса.
// Если задан префикс, переменная с префиксом имеет приоритет над переменной без него.
type Environment struct {
	prefix string
	lookup func(key string) (string, bool)
}

// Option настраивает Environment.
type Option func(*Environment)

// WithPrefix задает префикс имен переменных, например TINYURL_.
func WithPrefix(prefix string) Option {
	return func(e *Environment) {
		e.prefix = prefix
	}
}

// WithLookup заменяет источник переменных.
func WithLookup(lookup func(key string) (string, bool)) Option {
	return func(e *Environment) {
		e.lookup = lookup
	}
}

// New создает экземпляр Environment.
func New(opts ...Option) Environment {
	env := Environment{lookup: os.LookupEnv}

	for _, opt := range opts {
		opt(&env)
	}

	return env
}

// LookupEnv возвращает значение переменной среды по ключу, если переменная существует.
func (env Environment) LookupEnv(key string) (string, bool) {
	if env.prefix != "" {
		if value, ok := env.lookup(env.prefix + key); ok {
			return value, true
		}
	}

	return env.lookup(key)
}

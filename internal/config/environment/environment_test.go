package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupEnv(t *testing.T) {
	vars := map[string]string{
		"SERVER_ADDRESS":         "localhost:8080",
		"TINYURL_SERVER_ADDRESS": "localhost:9090",
		"BASE_URL":               "http://localhost",
	}
	lookup := func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}

	t.Run("without prefix", func(t *testing.T) {
		env := New(WithLookup(lookup))

		got, ok := env.LookupEnv("SERVER_ADDRESS")

		assert.True(t, ok)
		assert.Equal(t, "localhost:8080", got)
	})

	t.Run("prefixed variable wins", func(t *testing.T) {
		env := New(WithLookup(lookup), WithPrefix("TINYURL_"))

		got, ok := env.LookupEnv("SERVER_ADDRESS")

		assert.True(t, ok)
		assert.Equal(t, "localhost:9090", got)
	})

	t.Run("fallback to unprefixed variable", func(t *testing.T) {
		env := New(WithLookup(lookup), WithPrefix("TINYURL_"))

		got, ok := env.LookupEnv("BASE_URL")

		assert.True(t, ok)
		assert.Equal(t, "http://localhost", got)
	})

	t.Run("variable not set", func(t *testing.T) {
		env := New(WithLookup(lookup), WithPrefix("TINYURL_"))

		_, ok := env.LookupEnv("DATABASE_DSN")

		assert.False(t, ok)
	})

	t.Run("process environment", func(t *testing.T) {
		t.Setenv("TINYURL_TEST_VALUE", "42")
		env := New(WithPrefix("TINYURL_"))

		got, ok := env.LookupEnv("TEST_VALUE")

		assert.True(t, ok)
		assert.Equal(t, "42", got)
	})
}

package domain

import (
	"errors"
)

// Ошибки хранилища сокращенных ссылок.
var (
	ErrMappingNotFound = errors.New("not found")         // сокращенная ссылка не найдена
	ErrShortCodeExists = errors.New("short code exists") // сокращенный код уже занят
)

package domain

import "errors"

// Ошибки модели. Отсутствие ротации или unit — штатная ситуация,
// сообщается через error, никогда через panic.
var (
	// ErrNotFound — ротация или unit с таким именем не найдены.
	ErrNotFound = errors.New("not found")

	// ErrExists — ротация или unit с таким именем уже существуют.
	ErrExists = errors.New("already exists")
)

package storage

import "errors"

var (
	// ErrStorageUnavailable файл хранилища отсутствует или недоступен для чтения/записи
	ErrStorageUnavailable = errors.New("vacancy storage unavailable")

	// ErrMalformedStore содержимое файла не JSON или в нем нет ключа items
	ErrMalformedStore = errors.New("malformed vacancy storage")
)

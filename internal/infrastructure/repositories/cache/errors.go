package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound se devuelve cuando la clave no existe en el backend
	ErrKeyNotFound = errors.New("key not found")
	// ErrKeyExpired se devuelve cuando la clave existía pero su expiresAt ya pasó
	ErrKeyExpired = errors.New("key expired")
	// ErrCacheUnavailable envuelve cualquier fallo del backend (red, serialización, cierre)
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// IsMiss reports whether err means "no usable value" rather than a backend failure
func IsMiss(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, ErrKeyExpired)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCacheUnavailable, op, err)
}

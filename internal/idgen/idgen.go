// Package idgen generates short, URL-safe record identifiers.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphabet   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomLen  = 10
	syncPrefix = "sync-"
)

// NewSyncID returns an identifier for one sync attempt, e.g. "sync-x7Kp2mQ9aB".
func NewSyncID() (string, error) {
	return New(syncPrefix)
}

// New returns a fresh identifier with the given prefix followed by
// ten alphanumeric characters.
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, randomLen)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

package data

import "errors"

// ErrEmptyKey is returned by cache repositories for an empty key.
var ErrEmptyKey = errors.New("key cannot be empty")

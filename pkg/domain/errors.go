package domain

import "errors"

// ErrKeyNotFound is returned by a KV backend when a key is absent.
var ErrKeyNotFound = errors.New("key not found")

// ErrNoProject is returned when an operation needs a selected project and none is active.
var ErrNoProject = errors.New("no active project")

// ErrUnknownKind is returned for an item kind outside the supported set.
var ErrUnknownKind = errors.New("unknown item kind")

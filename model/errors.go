package model

import "errors"

var (
	// ErrUnsupported is returned for operations a store variant cannot perform,
	// such as reading a single emission weight from the dual store.
	ErrUnsupported = errors.New("model: unsupported operation")
	// ErrFinalized is returned when an average is finalized twice.
	ErrFinalized = errors.New("model: average already finalized")
	// ErrUnknownKind is returned for a store kind New does not know.
	ErrUnknownKind = errors.New("model: unknown store kind")
	// ErrSymbolOutOfRange is returned when setting an emission for a symbol a dense store has no slot for.
	ErrSymbolOutOfRange = errors.New("model: symbol out of range")
)

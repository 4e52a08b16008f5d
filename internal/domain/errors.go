package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a request rejected before any remote call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists indicates a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrAlreadyCreated is returned by create operations on an entity that already has a remote mirror.
	ErrAlreadyCreated = errors.New("remote object already created")
	// ErrNotCreated is returned by operations that need a remote mirror the entity does not have.
	ErrNotCreated = errors.New("remote object not created")
	// ErrAlreadyLinked is returned when binding a remote id onto a link that already holds one.
	ErrAlreadyLinked = errors.New("remote link already bound")
	// ErrRejected wraps provider failures that were recorded on the entity's error list.
	ErrRejected = errors.New("rejected by provider")
)

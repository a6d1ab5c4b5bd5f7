// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrConflict signals that an operation cannot proceed
// because of the entity's current state (e.g. starting delivery on an
// order that is not SHIPPED).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as confirming an already-completed payment or
// an illegal status transition. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInsufficientStock is returned by the order checkout path when a
// part's stock cannot cover the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrEmailExists is returned when creating a user with an email that is
// already registered.
var ErrEmailExists = errors.New("email already exists")

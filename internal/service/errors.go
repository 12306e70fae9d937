package service

import (
	"errors"
	"fmt"

	"chronology/internal/store"
)

// NotFoundError reports a missing project or metric. Its message is the
// one returned to API clients.
type NotFoundError struct {
	Resource string // "Project" or "Metric"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

// Is lets errors.Is(err, store.ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == store.ErrNotFound
}

// ValidationError reports a request that is well-formed JSON but
// semantically invalid.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ConflictError reports a create that collides with an existing row.
type ConflictError struct {
	Resource string
	ID       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with id '%s' already exists", e.Resource, e.ID)
}

func projectNotFound(id string) error { return &NotFoundError{Resource: "Project", ID: id} }

func metricNotFound(id string) error { return &NotFoundError{Resource: "Metric", ID: id} }

// translate maps store errors for a project-scoped call onto service errors.
func translate(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Resource: resource, ID: id}
	case errors.Is(err, store.ErrConflict):
		return &ConflictError{Resource: resource, ID: id}
	}
	return err
}

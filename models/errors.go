package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrState      = errors.New("invalid state")
	ErrPermission = errors.New("permission denied")
	ErrValidation = errors.New("validation failed")
)

// NotFoundError reports an unknown entity key.
type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v no encontrado", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a taken slot or an identity bound elsewhere.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// StateError reports an operation attempted from an illegal lifecycle state.
type StateError struct {
	CitaID    uint
	Estado    Estado
	Operation string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cita %d en estado %s no admite %s", e.CitaID, e.Estado, e.Operation)
}

func (e *StateError) Is(target error) bool { return target == ErrState }

// PermissionError reports an actor without authority for a mutation.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string { return e.Reason }

func (e *PermissionError) Is(target error) bool { return target == ErrPermission }

// ValidationError carries per-field input problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

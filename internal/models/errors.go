package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName    = errors.New("invalid project name")
	ErrNotFound       = errors.New("project not found")
	ErrAlreadyExists  = errors.New("project already exists")
	ErrNeverRun       = errors.New("project has never been run")
	ErrNotValidSource = errors.New("source is not a valid project")
	ErrCancelled      = errors.New("cancelled")
)

// InvalidNameError explains why a project name was rejected.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid project name %q: %s", e.Name, e.Reason)
}

func (e *InvalidNameError) Unwrap() error {
	return ErrInvalidName
}

// ProjectError ties one of the project sentinels to a project name.
type ProjectError struct {
	Name string
	Err  error
}

// NotFound returns the error for a name that is not a valid project.
func NotFound(name string) error {
	return &ProjectError{Name: name, Err: ErrNotFound}
}

// AlreadyExists returns the error for a name collision.
func AlreadyExists(name string) error {
	return &ProjectError{Name: name, Err: ErrAlreadyExists}
}

func (e *ProjectError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNotFound):
		return fmt.Sprintf("no project found with name '%s'", e.Name)
	case errors.Is(e.Err, ErrAlreadyExists):
		return fmt.Sprintf("project '%s' already exists", e.Name)
	case errors.Is(e.Err, ErrNeverRun):
		return fmt.Sprintf("no __pycache__ found for '%s'; run the project at least once to generate cache files", e.Name)
	case errors.Is(e.Err, ErrNotValidSource):
		return fmt.Sprintf("'%s' is not a valid project", e.Name)
	default:
		return fmt.Sprintf("project '%s': %v", e.Name, e.Err)
	}
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

// FilesystemError carries the cause of a failed copy, move or removal.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

package domain

import "errors"

// ErrNotFound is returned when a name does not resolve to a discovered definition.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when a name matches more than one definition file
// (e.g. both python.yaml and python.yml).
var ErrAmbiguous = errors.New("ambiguous name")

// ErrNotCreated is returned when an operation targets an environment that has not
// been materialized on disk.
var ErrNotCreated = errors.New("environment not created")

// ErrCreationFailed is returned when the conda frontend fails to build an environment.
var ErrCreationFailed = errors.New("failed to create conda environment")

// ErrUnimplemented is returned by engine protocols this version cannot drive yet.
var ErrUnimplemented = errors.New("not implemented")

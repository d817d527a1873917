package database

import "errors"

// ErrRecordNotFound is returned by mutations that target a record ID which
// does not exist.
var ErrRecordNotFound = errors.New("visited url record not found")

// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false and
// no database file exists.
var ErrDatabaseNotFound = errors.New("database not found")

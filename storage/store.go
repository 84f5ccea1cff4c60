// Package storage provides the durable key/value store the API client uses to
// keep its session token, cached profile fields and endpoint override across
// runs.
//
// Values are plain strings under fixed keys and never expire; callers are
// responsible for invalidation. Backends:
//
//   - MemoryStore: process-local, used in tests
//   - FileStore: a single JSON file, the default for the CLI
//   - SQLStore: a gorm-managed table, sqlite by default
//   - RedisStore: a redis instance shared between machines
//
// Scoped wraps any Store so several profiles can share one backend.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Store is a synchronous string-keyed persistence layer.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (value string, found bool, err error)

	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Driver names accepted by Open
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name
var ErrUnknownDriver = errors.New("unknown storage driver")

// Options selects and configures a backend for Open
type Options struct {
	Driver string
	// Path is the JSON file for the file driver and the database file for sqlite
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Prefix is prepended to every redis key
	Prefix string
}

// Open creates the backend described by opts
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverMemory:
		return NewMemory(), nil
	case "", DriverFile:
		return NewFile(opts.Path)
	case DriverSQLite:
		return OpenSQLite(opts.Path)
	case DriverRedis:
		return DialRedis(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.Prefix)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, opts.Driver)
	}
}

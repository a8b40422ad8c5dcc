package sqlite

import (
	"github.com/MosYCo/test-data-generate/database"
)

// Driver implements database.Driver for SQLite and libSQL
type Driver struct {
	*Introspector
	*Generator
	name string
}

// NewDriver creates a new SQLite driver
func NewDriver() *Driver {
	return &Driver{
		Introspector: NewIntrospector(),
		Generator:    NewGenerator(),
		name:         "sqlite",
	}
}

// NewLibSQLDriver creates a driver for libSQL/Turso, which speaks the SQLite dialect
func NewLibSQLDriver() *Driver {
	d := NewDriver()
	d.name = "libsql"
	return d
}

// Name returns the database driver name
func (d *Driver) Name() string {
	return d.name
}

// Ensure Driver implements database.Driver
var _ database.Driver = (*Driver)(nil)

// Ensure Introspector implements database.Introspector
var _ database.Introspector = (*Introspector)(nil)

// Ensure Generator implements database.SQLGenerator
var _ database.SQLGenerator = (*Generator)(nil)

package postgres

import (
	"github.com/MosYCo/test-data-generate/database"
)

// Driver implements database.Driver for PostgreSQL
type Driver struct {
	*Introspector
	*Generator
}

// NewDriver creates a new PostgreSQL driver
func NewDriver() *Driver {
	return &Driver{
		Introspector: NewIntrospector(),
		Generator:    NewGenerator(),
	}
}

// Name returns the database driver name
func (d *Driver) Name() string {
	return "postgres"
}

// Ensure Driver implements database.Driver
var _ database.Driver = (*Driver)(nil)

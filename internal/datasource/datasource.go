// Package datasource models the databases tdg generates data for: their
// connection details, validation, connection testing and the on-disk registry.
package datasource

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MosYCo/test-data-generate/internal/clierr"
	"github.com/MosYCo/test-data-generate/internal/driver"
)

// Charsets accepted for a data source
var Charsets = []string{"utf8mb4", "utf8", "latin1"}

// DefaultCharset is used when a data source leaves the charset empty
const DefaultCharset = "utf8mb4"

// DefaultPostgresPort is the port assumed for PostgreSQL sources
const DefaultPostgresPort = 5432

// DataSource holds everything needed to reach a database.
type DataSource struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Host        string `json:"host,omitempty" yaml:"host,omitempty"`
	Port        int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database    string `json:"database,omitempty" yaml:"database,omitempty"`
	User        string `json:"user,omitempty" yaml:"user,omitempty"`
	Password    string `json:"-" yaml:"-"`
	FilePath    string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	AuthToken   string `json:"-" yaml:"-"`
	Charset     string `json:"charset,omitempty" yaml:"charset,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DatabaseType represents a selectable database option
type DatabaseType struct {
	ID          string
	DisplayName string
	Description string
}

// DatabaseTypes lists the supported types in display order
var DatabaseTypes = []DatabaseType{
	{ID: driver.TypePostgres, DisplayName: "PostgreSQL", Description: "server database"},
	{ID: driver.TypeSQLite, DisplayName: "SQLite", Description: "simple, file-based"},
	{ID: driver.TypeLibSQL, DisplayName: "libSQL/Turso", Description: "edge database"},
}

// New returns a data source of the given type with defaults filled in.
func New(typ string) DataSource {
	ds := DataSource{Type: driver.NormalizeType(typ), Charset: DefaultCharset}
	if ds.Type == driver.TypePostgres {
		ds.Port = DefaultPostgresPort
		ds.Host = "localhost"
	}
	return ds
}

// Validate checks that the fields required by the source's type are present.
// All problems are reported together.
func (ds DataSource) Validate() error {
	var errs []error

	if strings.TrimSpace(ds.Name) == "" {
		errs = append(errs, errors.New("data source name is required"))
	}

	switch driver.NormalizeType(ds.Type) {
	case driver.TypePostgres:
		if strings.TrimSpace(ds.Host) == "" {
			errs = append(errs, errors.New("host is required"))
		}
		if ds.Port < 1 || ds.Port > 65535 {
			errs = append(errs, errors.New("port must be between 1 and 65535"))
		}
		if strings.TrimSpace(ds.Database) == "" {
			errs = append(errs, errors.New("database name is required"))
		}
		if strings.TrimSpace(ds.User) == "" {
			errs = append(errs, errors.New("user is required"))
		}
	case driver.TypeSQLite:
		if strings.TrimSpace(ds.FilePath) == "" {
			errs = append(errs, errors.New("database file path is required"))
		}
	case driver.TypeLibSQL:
		if !strings.HasPrefix(ds.URL, "libsql://") && !strings.HasPrefix(ds.URL, "https://") && !strings.HasPrefix(ds.URL, "wss://") {
			errs = append(errs, errors.New("libSQL URL must start with libsql://, https:// or wss://"))
		}
	case "":
		errs = append(errs, errors.New("database type is required"))
	default:
		errs = append(errs, fmt.Errorf("unsupported database type: %s", ds.Type))
	}

	if ds.Charset != "" && !isCharset(ds.Charset) {
		errs = append(errs, fmt.Errorf("charset must be one of %s", strings.Join(Charsets, ", ")))
	}

	if len(errs) == 0 {
		return nil
	}
	return clierr.Validation(errors.Join(errs...))
}

// ConnectionString builds the driver connection string for the source.
func (ds DataSource) ConnectionString() string {
	switch driver.NormalizeType(ds.Type) {
	case driver.TypePostgres:
		return buildPostgresConnectionString(ds)
	case driver.TypeSQLite:
		return normalizeSQLitePath(ds.FilePath)
	case driver.TypeLibSQL:
		if ds.AuthToken != "" {
			return fmt.Sprintf("%s?authToken=%s", ds.URL, url.QueryEscape(ds.AuthToken))
		}
		return ds.URL
	default:
		return ""
	}
}

// redactedMask replaces secrets in displayed connection strings, matching url.URL.Redacted.
const redactedMask = "xxxxx"

// Redacted returns the connection string with secrets masked, for display.
func (ds DataSource) Redacted() string {
	switch driver.NormalizeType(ds.Type) {
	case driver.TypePostgres:
		return postgresURL(ds).Redacted()
	case driver.TypeLibSQL:
		if ds.AuthToken != "" {
			return ds.URL + "?authToken=" + redactedMask
		}
	}
	return ds.ConnectionString()
}

// Address is a short human readable location of the source.
func (ds DataSource) Address() string {
	switch driver.NormalizeType(ds.Type) {
	case driver.TypePostgres:
		return fmt.Sprintf("%s:%d/%s", ds.Host, ds.Port, ds.Database)
	case driver.TypeSQLite:
		return ds.FilePath
	default:
		return ds.URL
	}
}

// ValidatePort checks if a port number typed into a form is valid
func ValidatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	return nil
}

// ValidateKey checks if a registry key is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("data source key cannot be empty")
	}

	for _, ch := range key {
		isValid := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-'
		if !isValid {
			return fmt.Errorf("data source key must contain only letters, numbers, underscores, and hyphens")
		}
	}

	return nil
}

func buildPostgresConnectionString(ds DataSource) string {
	return postgresURL(ds).String()
}

func postgresURL(ds DataSource) *url.URL {
	// Local servers rarely have TLS configured
	sslMode := "require"
	if ds.Host == "localhost" || ds.Host == "127.0.0.1" {
		sslMode = "disable"
	}

	u := &url.URL{
		Scheme:   "postgresql",
		Host:     fmt.Sprintf("%s:%d", ds.Host, ds.Port),
		Path:     "/" + ds.Database,
		RawQuery: "sslmode=" + sslMode,
	}
	if ds.User != "" {
		if ds.Password != "" {
			u.User = url.UserPassword(ds.User, ds.Password)
		} else {
			u.User = url.User(ds.User)
		}
	}
	return u
}

func normalizeSQLitePath(path string) string {
	path = strings.TrimPrefix(path, "sqlite://")
	if path == "" || path == ":memory:" {
		return path
	}
	if !strings.HasPrefix(path, "./") && !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "file:") {
		return "./" + path
	}
	return path
}

func isCharset(c string) bool {
	for _, known := range Charsets {
		if known == c {
			return true
		}
	}
	return false
}

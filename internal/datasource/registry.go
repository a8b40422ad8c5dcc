package datasource

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/gosimple/slug"

	"github.com/MosYCo/test-data-generate/internal/config"
)

// ErrNotFound is returned when a data source key is not registered.
var ErrNotFound = errors.New("data source not found")

// Registry stores data sources in tdg.toml and their secrets in .env.<key>.
type Registry struct {
	cfg *config.Config
}

// NewRegistry returns a registry backed by cfg.
func NewRegistry(cfg *config.Config) *Registry {
	if cfg.DataSources == nil {
		cfg.DataSources = map[string]config.DataSourceConfig{}
	}
	return &Registry{cfg: cfg}
}

// List returns all registered data sources sorted by key. Secrets are not loaded.
func (r *Registry) List() []DataSource {
	keys := make([]string, 0, len(r.cfg.DataSources))
	for k := range r.cfg.DataSources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]DataSource, 0, len(keys))
	for _, k := range keys {
		out = append(out, fromConfig(k, r.cfg.DataSources[k]))
	}
	return out
}

// Get returns the data source with its secrets filled in.
func (r *Registry) Get(key string) (DataSource, error) {
	entry, ok := r.cfg.DataSources[key]
	if !ok {
		return DataSource{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	ds := fromConfig(key, entry)
	secrets, err := r.cfg.ReadSecrets(key)
	if err != nil {
		return DataSource{}, err
	}
	ds.Password = secrets[config.SecretPassword]
	ds.AuthToken = secrets[config.SecretAuthToken]
	return ds, nil
}

// Add validates and registers ds, returning it with its assigned key.
// The key is derived from the name and suffixed when already taken.
func (r *Registry) Add(ds DataSource) (DataSource, error) {
	if err := ds.Validate(); err != nil {
		return DataSource{}, err
	}

	ds.Key = r.uniqueKey(ds.Name)
	if err := ValidateKey(ds.Key); err != nil {
		return DataSource{}, err
	}

	if err := r.cfg.WriteSecrets(ds.Key, map[string]string{
		config.SecretPassword:  ds.Password,
		config.SecretAuthToken: ds.AuthToken,
	}); err != nil {
		return DataSource{}, err
	}

	r.cfg.DataSources[ds.Key] = toConfig(ds)
	if err := r.cfg.Save(); err != nil {
		delete(r.cfg.DataSources, ds.Key)
		_ = r.cfg.RemoveSecrets(ds.Key)
		return DataSource{}, err
	}
	return ds, nil
}

// Remove deletes a data source and its secrets.
func (r *Registry) Remove(key string) error {
	entry, ok := r.cfg.DataSources[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	delete(r.cfg.DataSources, key)
	if err := r.cfg.Save(); err != nil {
		r.cfg.DataSources[key] = entry
		return err
	}
	return r.cfg.RemoveSecrets(key)
}

func (r *Registry) uniqueKey(name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "source"
	}

	key := base
	for i := 2; ; i++ {
		if _, taken := r.cfg.DataSources[key]; !taken {
			return key
		}
		key = base + "-" + strconv.Itoa(i)
	}
}

func fromConfig(key string, c config.DataSourceConfig) DataSource {
	return DataSource{
		Key:         key,
		Name:        c.Name,
		Type:        c.Type,
		Host:        c.Host,
		Port:        c.Port,
		Database:    c.Database,
		User:        c.User,
		FilePath:    c.FilePath,
		URL:         c.URL,
		Charset:     c.Charset,
		Description: c.Description,
	}
}

func toConfig(ds DataSource) config.DataSourceConfig {
	return config.DataSourceConfig{
		Name:        ds.Name,
		Type:        ds.Type,
		Host:        ds.Host,
		Port:        ds.Port,
		Database:    ds.Database,
		User:        ds.User,
		FilePath:    ds.FilePath,
		URL:         ds.URL,
		Charset:     ds.Charset,
		Description: ds.Description,
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Secret keys stored in .env.<data source>
const (
	SecretPassword  = "TDG_PASSWORD"
	SecretAuthToken = "TDG_AUTH_TOKEN"
)

// SecretsPath returns the dotenv file holding secrets for a data source key.
func (c *Config) SecretsPath(key string) string {
	return filepath.Join(c.ConfigDir(), ".env."+key)
}

// ReadSecrets loads the dotenv file for a data source. A missing file is not an error.
func (c *Config) ReadSecrets(key string) (map[string]string, error) {
	path := c.SecretsPath(key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// WriteSecrets replaces the dotenv file for a data source. Empty values are dropped;
// when nothing remains the file is removed.
func (c *Config) WriteSecrets(key string, values map[string]string) error {
	path := c.SecretsPath(key)

	kept := make(map[string]string, len(values))
	for k, v := range values {
		if v != "" {
			kept[k] = v
		}
	}

	if len(kept) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		return nil
	}

	if err := godotenv.Write(kept, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return err
	}
	return c.EnsureGitignore()
}

// RemoveSecrets deletes the dotenv file for a data source if present.
func (c *Config) RemoveSecrets(key string) error {
	return c.WriteSecrets(key, nil)
}

// gitignoreSection keeps credentials and local state out of version control.
const gitignoreSection = `
# tdg credentials and local state
# DO NOT remove - .env.* files contain database passwords
.env.*
!.env.*.example
.tdg/
`

// EnsureGitignore appends the tdg section to the .gitignore next to the
// configuration file unless it already ignores .env files.
func (c *Config) EnsureGitignore() error {
	path := filepath.Join(c.ConfigDir(), ".gitignore")

	content := ""
	if data, err := os.ReadFile(path); err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.Contains(content, ".env.*") {
		return nil
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content+gitignoreSection), 0o644)
}

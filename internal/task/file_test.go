package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "task"+ext)
			original := shopTask()
			original.Seed = 42
			original.DataSource.Password = "never-written"

			require.NoError(t, original.Save(path))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), "never-written")

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, original.Name, loaded.Name)
			assert.Equal(t, int64(42), loaded.Seed)
			assert.Equal(t, original.Tables, loaded.Tables)
			assert.Empty(t, loaded.DataSource.Password)
		})
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{
			name:    "unknown field in json",
			file:    "task.json",
			content: `{"name": "x", "data_source": {"type": "sqlite"}, "tables": [], "colour": "red"}`,
			wantErr: "colour",
		},
		{
			name:    "missing name in yaml",
			file:    "task.yaml",
			content: "data_source:\n  type: sqlite\ntables: []\n",
			wantErr: "name",
		},
		{
			name:    "bad export format",
			file:    "task.yaml",
			content: "name: x\nexport_format: pdf\ndata_source:\n  type: sqlite\ntables: []\n",
			wantErr: "export_format",
		},
		{
			name:    "zero row count",
			file:    "task.json",
			content: `{"name": "x", "data_source": {"type": "sqlite"}, "tables": [{"name": "t", "row_count": 0, "columns": []}]}`,
			wantErr: "row_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "zh_CN.UTF-8")

	path := filepath.Join(t.TempDir(), "task.yaml")
	content := `name: nightly
data_source:
  type: sqlite
  file_path: shop.db
tables:
  - name: users
    columns:
      - name: id
        type: INTEGER
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "zh-CN", cfg.Language)
	assert.Equal(t, FormatJSON, cfg.ExportFormat)
	assert.Equal(t, DefaultRowCount, cfg.Tables[0].RowCount)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = 'x'"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported task file extension")
}

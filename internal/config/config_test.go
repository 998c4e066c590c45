package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/recordloom-cli/internal/source"
)

func TestLoad_DefaultsAndFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"dob", "visit_date"}, c.DateColumns)
	assert.Equal(t, "weight_kg", c.WeightOutput)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "markdown", c.TraceFormat)
	assert.Equal(t, source.DefaultQuery, c.SQLiteQuery)
	assert.NotEmpty(t, c.RunsDir)
	require.NoError(t, c.Validate())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("date_columns: [dob]\nworkers: 2\nlog_format: json\n"), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dob"}, c.DateColumns)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, "json", c.LogFormat)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("RECORDLOOM_WORKERS", "7")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, c.Workers)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	c.GenderColumn = "sex"
	c.KeepRawWeight = true

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(c, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sex", got.GenderColumn)
	assert.True(t, got.KeepRawWeight)
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*Global)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Global) {}},
		{name: "comma delimiter", mutate: func(g *Global) { g.Delimiter = "," }},
		{name: "tab delimiter", mutate: func(g *Global) { g.Delimiter = "tab" }},
		{name: "bad delimiter", mutate: func(g *Global) { g.Delimiter = "|" }, wantErr: true},
		{name: "zero workers", mutate: func(g *Global) { g.Workers = 0 }, wantErr: true},
		{name: "bad trace format", mutate: func(g *Global) { g.TraceFormat = "xml" }, wantErr: true},
		{name: "bad log level", mutate: func(g *Global) { g.LogLevel = "loud" }, wantErr: true},
		{name: "empty date column", mutate: func(g *Global) { g.DateColumns = []string{""} }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeOptions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	c.WeightOutput = "weight"
	opt := c.NormalizeOptions()
	assert.Equal(t, "weight", opt.WeightOutput)
	assert.Equal(t, c.DateColumns, opt.DateColumns)
	assert.Nil(t, opt.Logger)
}

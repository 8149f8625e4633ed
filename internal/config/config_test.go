package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/extract"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadParsesSourcesAndTargets(t *testing.T) {
	t.Setenv("S3_SECRET", "shh")

	path := writeTempConfig(t, `
[source.primary]
type = objectstore
connectionString = s3://bucket
dateField = businessDate
endpoint = https://s3.example.com
bucket = md-flatfiles
secretKey = ${S3_SECRET}

[target.analytics]
type = postgres
connection.url = postgres://db/analytics
sort.fields = receive_time,trade_id
max.memory.mb = 512
temporary.table.prefix = stg
target.table.mappings = quote=quote_table,trade=trade_table
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "objectstore", cfg.Sources[0].Type)
	assert.Equal(t, "shh", cfg.Sources[0].Properties["secretKey"])

	require.Len(t, cfg.Targets, 1)
	assert.Equal(t, 512, cfg.Targets[0].MaxMemoryMB)
	assert.Equal(t, []string{"receive_time", "trade_id"}, cfg.Targets[0].SortFields)
	assert.Equal(t, "quote_table", cfg.Targets[0].TargetTableMappings["quote"])

	target, table, ok := cfg.TargetForDataType("trade")
	assert.True(t, ok)
	assert.Equal(t, "trade_table", table)
	assert.Equal(t, "analytics", target.Name)
}

func TestLoadRejectsMissingSections(t *testing.T) {
	path := writeTempConfig(t, "[unrelated]\nkey = value\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsSourceWithoutType(t *testing.T) {
	path := writeTempConfig(t, "[source.a]\nconnectionString = x\n\n[target.b]\ntype = postgres\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsUnmappedDataType(t *testing.T) {
	path := writeTempConfig(t, `
[source.primary]
type = objectstore
category = AllPriceDepth
bucket = md-flatfiles

[target.analytics]
type = postgres
connection.url = postgres://db/analytics
target.table.mappings = trade=trade_table
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	err = Validate(cfg, extract.NewFactory(nil))
	require.Error(t, err)
}

func TestValidateAcceptsFullyMappedConfig(t *testing.T) {
	path := writeTempConfig(t, `
[source.primary]
type = objectstore
category = AllPriceDepth
bucket = md-flatfiles

[target.analytics]
type = postgres
connection.url = postgres://db/analytics
target.table.mappings = quote=quote_table
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.NoError(t, Validate(cfg, extract.NewFactory(nil)))
}

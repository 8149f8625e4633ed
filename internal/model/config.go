// Package model holds the engine's shared data model: Configuration,
// the per-day Context, the SourceRecord/TargetRecord sum types, and
// the result types the workflow engine produces.
package model

// SourceConfig describes one configured extraction source.
type SourceConfig struct {
	Name             string
	Type             string
	ConnectionString string
	DateField        string
	// Properties carries the category-specific keys from the INI file
	// (endpoint, bucket, region, prefix, secretId, secretKey,
	// maxFileSize, and any other *.key entry under this source).
	Properties map[string]string
}

// TargetConfig describes one configured load target.
type TargetConfig struct {
	Name                string
	Type                string
	ConnectionURL       string
	ConnectionUsername  string
	ConnectionPassword  string
	SortFields          []string
	MaxMemoryMB         int
	TemporaryTablePrefix string
	// TargetTableMappings maps a dataType (e.g. "quote") to the target
	// table name it loads into.
	TargetTableMappings map[string]string
}

// Configuration is immutable for the lifetime of one run.
type Configuration struct {
	Sources []SourceConfig
	Targets []TargetConfig
}

// SourceByName looks up a configured source, returning ok=false when
// absent.
func (c *Configuration) SourceByName(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// TargetForDataType returns the target config and table name that a
// given dataType loads into, per whichever target declares it in its
// TargetTableMappings.
func (c *Configuration) TargetForDataType(dataType string) (TargetConfig, string, bool) {
	for _, t := range c.Targets {
		if table, ok := t.TargetTableMappings[dataType]; ok {
			return t, table, true
		}
	}
	return TargetConfig{}, "", false
}

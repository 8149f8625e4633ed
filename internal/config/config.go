// Package config loads the engine's Configuration from an INI file,
// the external collaborator §1 places out of core scope. It is built
// anyway as a thin adapter, in the style of the teacher's
// getEnv/mustEnv helpers, with ${NAME} environment interpolation.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/sl40168/sdd-etl-tool-sub002/internal/errs"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/extract"
	"github.com/sl40168/sdd-etl-tool-sub002/internal/model"
)

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolate replaces every ${NAME} occurrence with the named
// environment variable's value, left untouched if unset.
func interpolate(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(m string) string {
		name := envRef.FindStringSubmatch(m)[1]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return m
	})
}

// Load reads path and produces a Configuration. Sections named
// "source.<name>" become SourceConfig entries; sections named
// "target.<name>" become TargetConfig entries, in file order.
func Load(path string) (*model.Configuration, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, errs.Config("CONFIG", "", "cannot read config file "+path, err)
	}

	cfg := &model.Configuration{}
	for _, sec := range f.Sections() {
		name := sec.Name()
		switch {
		case strings.HasPrefix(name, "source."):
			src, err := parseSource(strings.TrimPrefix(name, "source."), sec)
			if err != nil {
				return nil, err
			}
			cfg.Sources = append(cfg.Sources, src)
		case strings.HasPrefix(name, "target."):
			tgt, err := parseTarget(strings.TrimPrefix(name, "target."), sec)
			if err != nil {
				return nil, err
			}
			cfg.Targets = append(cfg.Targets, tgt)
		}
	}

	if len(cfg.Sources) == 0 {
		return nil, errs.Config("CONFIG", "", "no [source.*] sections found", nil)
	}
	if len(cfg.Targets) == 0 {
		return nil, errs.Config("CONFIG", "", "no [target.*] sections found", nil)
	}

	return cfg, nil
}

// Validate checks the two cross-cutting invariants §3 places on
// Configuration: every source type is constructible by the extractor
// factory, and every dataType a configured source produces appears as
// a key in some target's TargetTableMappings. Both are ConfigError,
// surfaced before any day starts (§6, §7).
func Validate(cfg *model.Configuration, factory *extract.Factory) error {
	tempRoot := os.TempDir()

	mapped := make(map[string]bool)
	for _, tgt := range cfg.Targets {
		for dataType := range tgt.TargetTableMappings {
			mapped[dataType] = true
		}
	}

	for _, src := range cfg.Sources {
		extractor, err := factory.New(src, tempRoot)
		if err != nil {
			return errs.Config("CONFIG", "", "source "+src.Name+" cannot be constructed: "+err.Error(), err)
		}
		_ = extractor.Cleanup()

		dataType, err := factory.DataTypeForSource(src)
		if err != nil {
			return err
		}
		if !mapped[dataType] {
			return errs.Config("CONFIG", "", "dataType "+dataType+" produced by source "+src.Name+" has no target table mapping in any [target.*] section", nil)
		}
	}
	return nil
}

func parseSource(name string, sec *ini.Section) (model.SourceConfig, error) {
	typ := sec.Key("type").String()
	if typ == "" {
		return model.SourceConfig{}, errs.Config("CONFIG", "", "source "+name+" missing type", nil)
	}

	props := make(map[string]string)
	for _, k := range sec.Keys() {
		props[k.Name()] = interpolate(k.String())
	}

	return model.SourceConfig{
		Name:             name,
		Type:             typ,
		ConnectionString: interpolate(sec.Key("connectionString").String()),
		DateField:        sec.Key("dateField").String(),
		Properties:       props,
	}, nil
}

func parseTarget(name string, sec *ini.Section) (model.TargetConfig, error) {
	typ := sec.Key("type").String()
	if typ == "" {
		return model.TargetConfig{}, errs.Config("CONFIG", "", "target "+name+" missing type", nil)
	}

	maxMB := 256
	if v := sec.Key("max.memory.mb").String(); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return model.TargetConfig{}, errs.Config("CONFIG", "", "target "+name+" max.memory.mb not an integer", err)
		}
		maxMB = n
	}

	mappings := make(map[string]string)
	for _, pair := range splitNonEmpty(sec.Key("target.table.mappings").String(), ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return model.TargetConfig{}, errs.Config("CONFIG", "", "target "+name+" malformed target.table.mappings entry "+pair, nil)
		}
		mappings[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}

	return model.TargetConfig{
		Name:                 name,
		Type:                 typ,
		ConnectionURL:        interpolate(sec.Key("connection.url").String()),
		ConnectionUsername:   interpolate(sec.Key("connection.username").String()),
		ConnectionPassword:   interpolate(sec.Key("connection.password").String()),
		SortFields:           splitNonEmpty(sec.Key("sort.fields").String(), ","),
		MaxMemoryMB:          maxMB,
		TemporaryTablePrefix: sec.Key("temporary.table.prefix").String(),
		TargetTableMappings:  mappings,
	}, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, sep) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "QUICKBAR_"

// Load resolves the configuration from defaults, the file at path and
// the environment. A missing file is not an error. An empty path skips
// the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := NewEnvLoader(EnvPrefix).Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the file at path onto cfg. The format follows the
// extension: .toml, .yaml or .yml.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Decode(cfg, filepath.Ext(path), data, path)
}

// Decode overlays data in the format named by ext onto cfg. Only keys
// present in data change.
func Decode(cfg *Config, ext string, data []byte, source string) error {
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return fmt.Errorf("%s: %w %q", source, ErrUnknownFormat, ext)
	}
	if err != nil {
		return &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}

// EnvLoader applies environment variables to a Config.
type EnvLoader struct {
	prefix  string
	mapping map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader reading variables starting with prefix.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
		environ: os.Environ,
	}
}

// defaultEnvMapping holds variables whose names do not follow the
// section_key convention.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"QUICKBAR_LOG_LEVEL": "log.level",
		"QUICKBAR_ADDR":      "bridge.addr",
		"QUICKBAR_DEV":       "dev.enabled",
		"QUICKBAR_DATA_DIR":  "paths.dataDir",
	}
}

// AddMapping maps envVar to a setting path.
func (l *EnvLoader) AddMapping(envVar, path string) {
	l.mapping[envVar] = path
}

// Apply sets every recognized variable on cfg. Variables under the
// prefix that name no setting are an error.
func (l *EnvLoader) Apply(cfg *Config) error {
	vars := l.environ()
	sort.Strings(vars)
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if err := Set(cfg, path, value); err != nil {
			return fmt.Errorf("environment %s: %w", name, err)
		}
	}
	return nil
}

// envToPath converts QUICKBAR_BRIDGE_CALL_TIMEOUT to bridge.callTimeout.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}
	setting := strings.ToLower(parts[1])
	for _, p := range parts[2:] {
		if p != "" {
			setting += strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		}
	}
	return section + "." + setting
}

var textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()

// Set assigns the string value to the setting at path ("section.key"),
// converting it to the setting's type. Keys match case-insensitively.
func Set(cfg *Config, path, value string) error {
	section, key, ok := strings.Cut(path, ".")
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	sec, ok := fieldByTag(reflect.ValueOf(cfg).Elem(), section)
	if !ok || sec.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	field, ok := fieldByTag(sec, key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	if field.CanAddr() && field.Addr().Type().Implements(textUnmarshaler) {
		if err := field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(value)); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := parseBool(value)
		if err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("%w: %q has unsupported type %s", ErrInvalidPath, path, field.Type())
	}
	return nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := range t.NumField() {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if strings.EqualFold(tag, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

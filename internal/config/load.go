package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/predixlabs/predix-deploy/internal/constants"
)

// Load reads, decodes, and validates a deployment manifest. path may be the
// manifest itself or a directory containing predix-deploy.{yaml,yml,toml,json}.
// The returned config is normalized (defaults applied).
func Load(path string) (Config, error) {
	configFile, err := FindConfigFile(path)
	if err != nil {
		return Config{}, err
	}

	format, err := getConfigFormat(configFile)
	if err != nil {
		return Config{}, err
	}
	parser, err := getConfigParser(format)
	if err != nil {
		return Config{}, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configFile), parser); err != nil {
		return Config{}, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := checkUnknownKeys(k.Keys(), format); err != nil {
		return Config{}, err
	}

	var cfg Config
	decoderConfig := &mapstructure.DecoderConfig{
		TagName:    format,
		Result:     &cfg,
		Squash:     true,
		DecodeHook: portMappingDecodeHook(),
	}
	unmarshalConf := koanf.UnmarshalConf{
		Tag:           format,
		DecoderConfig: decoderConfig,
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Format = format

	normalized, err := cfg.Normalize()
	if err != nil {
		return Config{}, err
	}
	if err := normalized.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config '%s': %w", configFile, err)
	}
	return normalized, nil
}

// FindConfigFile resolves path to a concrete manifest file.
func FindConfigFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("config path '%s' not found: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, ext := range []string{".yaml", ".yml", ".toml", ".json"} {
		candidate := filepath.Join(path, constants.ConfigFileBase+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no %s.{yaml,yml,toml,json} found in '%s'", constants.ConfigFileBase, path)
}

func getConfigFormat(configFile string) (string, error) {
	switch filepath.Ext(configFile) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	case ".toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("unsupported config file type: %s", filepath.Ext(configFile))
	}
}

func getConfigParser(format string) (koanf.Parser, error) {
	switch format {
	case "json":
		return json.Parser(), nil
	case "yaml":
		return yaml.Parser(), nil
	case "toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
}

// checkUnknownKeys rejects manifest keys that don't correspond to a Config
// field, so typos fail loudly instead of silently deploying defaults.
func checkUnknownKeys(keys []string, format string) error {
	exact, prefixes := allowedKeys(reflect.TypeOf(Config{}), format, "")

	var unknown []string
	for _, key := range keys {
		if exact[key] {
			continue
		}
		allowed := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(key, prefix+".") {
				allowed = true
				break
			}
		}
		if !allowed {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown config keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// allowedKeys walks the struct and collects legal key paths for a format.
// Map-typed fields (branches, build args) allow any subkey and are returned
// as prefixes.
func allowedKeys(t reflect.Type, format, base string) (map[string]bool, []string) {
	exact := make(map[string]bool)
	var prefixes []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get(format)
		name := strings.Split(tag, ",")[0]
		if name == "-" || name == "" {
			continue
		}
		path := name
		if base != "" {
			path = base + "." + name
		}
		exact[path] = true

		ft := field.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Struct:
			childExact, childPrefixes := allowedKeys(ft, format, path)
			for k := range childExact {
				exact[k] = true
			}
			prefixes = append(prefixes, childPrefixes...)
		case reflect.Map:
			prefixes = append(prefixes, path)
		case reflect.Slice:
			elem := ft.Elem()
			for elem.Kind() == reflect.Pointer {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct {
				// Slice elements appear as "path.N.field" in koanf keys.
				prefixes = append(prefixes, path)
			}
		}
	}
	return exact, prefixes
}

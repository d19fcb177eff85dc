// Package config resolves the effective settings for a session from three
// layers: an optional config file, pre-set environment variables, and CLI
// flags. Precedence is flags > environment > file, which is viper's natural
// lookup order once flags are bound and AutomaticEnv is on — the file layer
// is merged at config level and therefore can never shadow an environment
// variable that was already set.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. DEVSTRAP_WORKSPACE.
const EnvPrefix = "DEVSTRAP"

// Config is the immutable result of resolution. It is built once at startup
// and threaded through the session; nothing mutates it afterwards.
type Config struct {
	Workspace      string
	Repos          []string
	Folders        []string
	NonInteractive bool
	Yes            bool
	DryRun         bool
	NoLog          bool
	AutoRun        bool
	SkipToolchains bool
	Node           string
	Java           string

	// FromFile records that a config file was loaded, which forces
	// NonInteractive and Yes so automated invocations never block.
	FromFile bool
}

// LoadFile parses path by extension and merges the result into v at config
// precedence. `.json` and `.yaml`/`.yml` are structured parses; anything
// else is treated as line-oriented KEY=VALUE (comments and a leading
// "export" are handled by the dotenv parser). Any read or parse failure is
// returned to the caller, which treats it as fatal.
func LoadFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
	default:
		kv, err := godotenv.Parse(strings.NewReader(string(data)))
		if err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		raw = make(map[string]any, len(kv))
		for k, val := range kv {
			raw[k] = val
		}
	}

	return v.MergeConfigMap(Flatten(raw))
}

// Flatten normalizes an arbitrarily nested config map into the flat keys the
// rest of the program consumes: nested maps are joined with underscores,
// lists are comma-joined into a single string, and every key is lowered and
// mapped to flag spelling (underscores become dashes) so NON_INTERACTIVE=1
// in a file lands on the same key as --non-interactive.
func Flatten(raw map[string]any) map[string]any {
	out := map[string]any{}
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, val := range m {
			key := k
			if prefix != "" {
				key = prefix + "_" + k
			}
			switch t := val.(type) {
			case map[string]any:
				walk(key, t)
			case []any:
				parts := make([]string, 0, len(t))
				for _, item := range t {
					parts = append(parts, fmt.Sprint(item))
				}
				out[normalizeKey(key)] = strings.Join(parts, ",")
			default:
				out[normalizeKey(key)] = val
			}
		}
	}
	walk("", raw)
	return out
}

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.TrimPrefix(k, strings.ToLower(EnvPrefix)+"_")
	return strings.ReplaceAll(k, "_", "-")
}

// Resolve reads the merged viper state into a Config. fromFile forces
// assume-yes, non-interactive mode regardless of what the file said.
func Resolve(v *viper.Viper, fromFile bool) *Config {
	cfg := &Config{
		Workspace:      v.GetString("workspace"),
		Repos:          SplitList(v.GetString("repos")),
		Folders:        SplitList(v.GetString("folders")),
		NonInteractive: v.GetBool("non-interactive"),
		Yes:            v.GetBool("yes"),
		DryRun:         v.GetBool("dry-run"),
		NoLog:          v.GetBool("no-log"),
		AutoRun:        v.GetBool("auto-run"),
		SkipToolchains: v.GetBool("skip-toolchains"),
		Node:           v.GetString("node"),
		Java:           v.GetString("java"),
		FromFile:       fromFile,
	}
	if fromFile {
		cfg.NonInteractive = true
		cfg.Yes = true
	}
	return cfg
}

// SplitList turns a comma-joined value into trimmed, non-empty elements.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

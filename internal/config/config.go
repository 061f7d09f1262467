package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

const (
	EnvBackend  = "ROSTER_BACKEND"
	EnvDBDriver = "ROSTER_DB_DRIVER"
	EnvDBDSN    = "ROSTER_DB_DSN"
	EnvXMLPath  = "ROSTER_XML_PATH"
	EnvPageSize = "ROSTER_PAGE_SIZE"
	EnvDBSeed   = "ROSTER_DB_SEED"
	EnvLogLevel = "ROSTER_LOG_LEVEL"

	DefaultBackend  = "db"
	DefaultDBDriver = "sqlite"
	DefaultDBDSN    = "data/football_players.db"
	DefaultXMLPath  = "data/players.xml"
	DefaultPageSize = 10
	DefaultSeedSize = 50
	DefaultLogLevel = "warn"
)

// KnownKeys defines environment variable keys that roster recognizes.
var KnownKeys = []string{
	EnvBackend,
	EnvDBDriver,
	EnvDBDSN,
	EnvXMLPath,
	EnvPageSize,
	EnvDBSeed,
	EnvLogLevel,
}

// Config is the resolved startup configuration.
type Config struct {
	Backend  string
	DBDriver string
	DBDSN    string
	XMLPath  string
	PageSize int
	// Seed is the number of fake players inserted into an empty database
	// at startup; 0 disables seeding.
	Seed     int
	LogLevel string
}

// Load reads Config from the environment, filling defaults.
func Load() Config {
	return Config{
		Backend:  strings.ToLower(envOrDefault(EnvBackend, DefaultBackend)),
		DBDriver: strings.ToLower(envOrDefault(EnvDBDriver, DefaultDBDriver)),
		DBDSN:    envOrDefault(EnvDBDSN, DefaultDBDSN),
		XMLPath:  envOrDefault(EnvXMLPath, DefaultXMLPath),
		PageSize: intEnvOrDefault(EnvPageSize, DefaultPageSize),
		Seed:     seedEnv(EnvDBSeed),
		LogLevel: envOrDefault(EnvLogLevel, DefaultLogLevel),
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultValue
}

func intEnvOrDefault(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return defaultValue
	}
	return val
}

// seedEnv accepts a boolean (true seeds DefaultSeedSize players) or a
// positive count.
func seedEnv(key string) int {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "", "0", "false", "no":
		return 0
	case "1", "true", "yes":
		return DefaultSeedSize
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return 0
}

// LoadAndApply loads configuration from ~/.roster/config.yaml (or .yml/.json)
// and applies values into the process environment for known keys if they are
// not already set. Environment variables take precedence over file values.
func LoadAndApply() error {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil // non-fatal
	}
	return ApplyFrom(filepath.Join(home, ".roster"))
}

// ApplyFrom is LoadAndApply for an explicit config directory.
func ApplyFrom(base string) error {
	paths := []string{
		filepath.Join(base, "config.yaml"),
		filepath.Join(base, "config.yml"),
		filepath.Join(base, "config.json"),
	}
	var data map[string]any
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if strings.HasSuffix(p, ".json") {
			m, err := parseJSON(b)
			if err != nil {
				return fmt.Errorf("config %s: %w", p, err)
			}
			data = m
		} else if m, err := parseYAMLShallow(string(b)); err == nil {
			data = m
		}
		if data != nil {
			break
		}
	}
	if len(data) == 0 {
		return nil
	}
	for _, key := range KnownKeys {
		if os.Getenv(key) != "" {
			continue
		}
		if v, ok := lookupInsensitive(data, key); ok {
			if err := os.Setenv(key, toString(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseJSON(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := jsoniter.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// parseYAMLShallow parses very shallow YAML with top-level key: value pairs.
// Nested objects, arrays and comments are ignored.
func parseYAMLShallow(s string) (map[string]any, error) {
	m := make(map[string]any)
	rd := bufio.NewScanner(strings.NewReader(s))
	for rd.Scan() {
		raw := rd.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t") {
			continue
		}
		i := strings.IndexRune(line, ':')
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		val := strings.TrimSpace(line[i+1:])
		if j := strings.Index(val, " #"); j >= 0 {
			val = strings.TrimSpace(val[:j])
		}
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			m[key] = val[1 : len(val)-1]
			continue
		}
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			m[key] = b
			continue
		}
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			m[key] = n
			continue
		}
		m[key] = val
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, errors.New("empty or unsupported YAML")
	}
	return m, nil
}

// lookupInsensitive also accepts keys without the ROSTER_ prefix, so
// "page_size: 20" works in the file.
func lookupInsensitive(m map[string]any, key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}
	short := strings.TrimPrefix(key, "ROSTER_")
	for k, v := range m {
		if strings.EqualFold(k, key) || strings.EqualFold(k, short) {
			return v, true
		}
	}
	return nil, false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const configFileName = "profiles.yaml"

// Drivers a DSN can select.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrConfigExists    = errors.New("config file already exists")
)

var configDirFunc = configDir

type Profile struct {
	Name        string `yaml:"name"`
	DSN         string `yaml:"dsn"`
	Description string `yaml:"description,omitempty"`
}

type Config struct {
	Default  string    `yaml:"default,omitempty"`
	Profiles []Profile `yaml:"profiles"`
}

const template = `# mysqlplan connection profiles.
#
# dsn is either a MySQL DSN (user:password@tcp(host:3306)/schema) or a
# postgres:// URL. SQL input is explained only over MySQL; either kind can
# supply table metadata for plans read from JSON files.
default: local
profiles:
  - name: local
    dsn: "root:secret@tcp(127.0.0.1:3306)/shop"
    description: local development database
`

// Driver reports which database a DSN points at.
func Driver(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DriverPostgres
	}
	return DriverMySQL
}

func Resolve(name string) (string, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoProfiles
		}
		return "", err
	}

	if p, ok := cfg.find(name); ok {
		return p.DSN, nil
	}

	return "", fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

func List() ([]Profile, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return cfg.Profiles, nil
}

// Default returns the default profile name, or "" when none is set.
func Default() (string, error) {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return cfg.Default, nil
}

func Add(name, dsn, description string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("profile name must not be empty")
	}

	cfg, err := load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if cfg == nil {
		cfg = &Config{}
	}

	for i, p := range cfg.Profiles {
		if p.Name == name {
			cfg.Profiles[i].DSN = dsn
			if description != "" {
				cfg.Profiles[i].Description = description
			}
			return save(cfg)
		}
	}

	cfg.Profiles = append(cfg.Profiles, Profile{
		Name:        name,
		DSN:         dsn,
		Description: description,
	})
	return save(cfg)
}

func Remove(name string) error {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
		}
		return err
	}

	for i, p := range cfg.Profiles {
		if p.Name == name {
			cfg.Profiles = append(cfg.Profiles[:i], cfg.Profiles[i+1:]...)
			if cfg.Default == name {
				cfg.Default = ""
			}
			return save(cfg)
		}
	}

	return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// ResolveDSN picks the DSN for a run: an explicit --db wins, then --profile,
// then the default profile. An empty result means no connection.
func ResolveDSN(db, profileName string) (string, error) {
	if db != "" {
		return db, nil
	}
	if profileName != "" {
		return Resolve(profileName)
	}

	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	if cfg.Default != "" {
		return Resolve(cfg.Default)
	}

	return "", nil
}

func SetDefault(name string) error {
	cfg, err := load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if cfg == nil {
		cfg = &Config{}
	}

	if _, ok := cfg.find(name); !ok {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	cfg.Default = name
	return save(cfg)
}

func ClearDefault() error {
	cfg, err := load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cfg.Default = ""
	return save(cfg)
}

// WriteTemplate writes an example profiles file and returns its path. An
// existing file is kept unless force is set.
func WriteTemplate(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	} else if err != nil && !os.IsNotExist(err) {
		return path, err
	}

	if err := ensureConfigDir(); err != nil {
		return path, err
	}
	if err := os.WriteFile(path, []byte(template), 0600); err != nil {
		return path, fmt.Errorf("writing config %s: %w", path, err)
	}
	return path, nil
}

// Path returns the location of the profiles file.
func Path() (string, error) {
	return configPath()
}

func (c *Config) find(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

func load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return &cfg, nil
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, "mysqlplan"), nil
}

func configPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func ensureConfigDir() error {
	dir, err := configDirFunc()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

func save(cfg *Config) error {
	if err := ensureConfigDir(); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	return nil
}

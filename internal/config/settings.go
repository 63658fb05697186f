package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// settingsFileSuffix is the settings file location relative to the XDG
// config directory.
const settingsFileSuffix = "samplefetch/config.toml"

// DefaultConcurrency bounds parallel file downloads in the API strategy.
const DefaultConcurrency = 8

// Settings holds the user's persistent defaults. Every field can be
// overridden per invocation by a command-line flag.
type Settings struct {
	// Repo is the samples repository in owner/repo form.
	Repo string `toml:"repo"`
	// Ref is the branch, tag, or commit to fetch from.
	Ref string `toml:"ref"`
	// Method is the retrieval method: auto, git, or api.
	Method string `toml:"method"`
	// Concurrency bounds parallel downloads in the api method.
	Concurrency int `toml:"concurrency"`

	Advisory AdvisorySettings `toml:"advisory"`
}

// AdvisorySettings configures the best-effort version compatibility advisory.
type AdvisorySettings struct {
	// MatrixURL is where the compatibility matrix JSON is fetched from.
	// Redirects are followed, so shortlinks work.
	MatrixURL string `toml:"matrix_url"`
	// CacheTTLHours is how long a cached matrix stays fresh.
	CacheTTLHours int `toml:"cache_ttl_hours"`
}

// DefaultSettings returns the built-in defaults used when no settings file
// exists.
func DefaultSettings() *Settings {
	return &Settings{
		Repo:        "pnp/sp-dev-fx-webparts",
		Ref:         "main",
		Method:      string(MethodAuto),
		Concurrency: DefaultConcurrency,
		Advisory: AdvisorySettings{
			MatrixURL:     "https://aka.ms/spfx-versions",
			CacheTTLHours: 24,
		},
	}
}

// SettingsPath returns the settings file location, creating parent
// directories as needed.
func SettingsPath() (string, error) {
	return xdg.ConfigFile(settingsFileSuffix)
}

// LoadSettings reads and parses a settings file from the given path.
// If the file does not exist it returns the defaults (no error); keys absent
// from the file keep their default values.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	if s.Concurrency <= 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.Advisory.CacheTTLHours <= 0 {
		s.Advisory.CacheTTLHours = DefaultSettings().Advisory.CacheTTLHours
	}

	return s, nil
}

// Save writes the settings back to the given path.
func (s *Settings) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating settings file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	return nil
}

// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	AppName       = "cwkeyer"
	ConfigType    = "yaml"
	EnvPrefix     = "CWKEYER"
	DefaultConfig = `# CW Keyer Configuration

# Speed
wpm: 25                 # Words per minute; dot length is 2.4/wpm seconds

# Outputs to key: any of gpio, sidetone, console
outputs:
  - gpio

# GPIO
gpio_pin: "17"          # Pin number or name (e.g. "17", "GPIO17")

# Sidetone (audio)
device_index: -1        # Playback device, -1 for default
sample_rate: 48000      # Audio sample rate in Hz
channels: 1             # Number of channels (1=mono)
tone_frequency: 600     # Sidetone frequency in Hz
volume: 0.5             # Sidetone level (0.0-1.0)
ramp_ms: 5              # Attack/release time in ms, removes key clicks

# Output
verbose: false          # Echo each word and its symbols
debug: false            # Enable debug logging
`
)

// Output names accepted in the outputs list
const (
	OutputGPIO     = "gpio"
	OutputSidetone = "sidetone"
	OutputConsole  = "console"
)

// Settings holds all application configuration
type Settings struct {
	// Speed
	WPM float64 `mapstructure:"wpm"`

	// Outputs
	Outputs []string `mapstructure:"outputs"`

	// GPIO
	GPIOPin string `mapstructure:"gpio_pin"`

	// Sidetone
	DeviceIndex   int     `mapstructure:"device_index"`
	SampleRate    float64 `mapstructure:"sample_rate"`
	Channels      int     `mapstructure:"channels"`
	ToneFrequency float64 `mapstructure:"tone_frequency"`
	Volume        float64 `mapstructure:"volume"`
	RampMs        float64 `mapstructure:"ramp_ms"`

	// Output
	Verbose bool `mapstructure:"verbose"`
	Debug   bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults, environment and config file.
// Config file search order: current directory, then ~/.config/cwkeyer/
func Init() error {
	// Set defaults
	viper.SetDefault("wpm", 25)
	viper.SetDefault("outputs", []string{OutputGPIO})
	viper.SetDefault("gpio_pin", "17")
	viper.SetDefault("device_index", -1)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("channels", 1)
	viper.SetDefault("tone_frequency", 600)
	viper.SetDefault("volume", 0.5)
	viper.SetDefault("ramp_ms", 5)
	viper.SetDefault("verbose", false)
	viper.SetDefault("debug", false)

	// CWKEYER_WPM=20 etc. override the file
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType(ConfigType)

	// Priority order: current directory first, then XDG config
	viper.AddConfigPath(".")

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	viper.AddConfigPath(filepath.Join(configDir, AppName))

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	if err = viper.ReadInConfig(); err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	// Read config file - if not found, create default in XDG config dir
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(filepath.Join(configDir, AppName)); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	s.normalize()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Watch re-reads the config file whenever it changes and hands the new
// settings (or the reason they were rejected) to onChange.
func Watch(onChange func(*Settings, error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(Get())
	})
	viper.WatchConfig()
}

// normalize lower-cases output names and drops blanks and duplicates.
func (s *Settings) normalize() {
	seen := make(map[string]bool, len(s.Outputs))
	outputs := s.Outputs[:0]
	for _, o := range s.Outputs {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		outputs = append(outputs, o)
	}
	s.Outputs = outputs
}

// HasOutput reports whether name is one of the configured outputs
func (s *Settings) HasOutput(name string) bool {
	for _, o := range s.Outputs {
		if o == name {
			return true
		}
	}
	return false
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Speed
	if !(s.WPM > 0) {
		errs = append(errs, fmt.Errorf("wpm must be positive, got %v", s.WPM))
	}

	// Outputs
	if len(s.Outputs) == 0 {
		errs = append(errs, errors.New("outputs must name at least one of gpio, sidetone, console"))
	}
	for _, o := range s.Outputs {
		switch o {
		case OutputGPIO, OutputSidetone, OutputConsole:
		default:
			errs = append(errs, fmt.Errorf("outputs must be gpio, sidetone or console, got %q", o))
		}
	}

	// GPIO
	if s.HasOutput(OutputGPIO) && strings.TrimSpace(s.GPIOPin) == "" {
		errs = append(errs, errors.New("gpio_pin must be set when the gpio output is enabled"))
	}

	// Sidetone
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %v", s.SampleRate))
	}
	if s.Channels < 1 || s.Channels > 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", s.Channels))
	}
	if s.ToneFrequency < 100 || s.ToneFrequency > 3000 {
		errs = append(errs, fmt.Errorf("tone_frequency must be between 100 and 3000 Hz, got %v", s.ToneFrequency))
	}
	if s.Volume < 0.0 || s.Volume > 1.0 {
		errs = append(errs, fmt.Errorf("volume must be between 0.0 and 1.0, got %v", s.Volume))
	}
	if s.RampMs < 0 || s.RampMs > 50 {
		errs = append(errs, fmt.Errorf("ramp_ms must be between 0 and 50, got %v", s.RampMs))
	}

	// Nyquist check: tone frequency must be less than half the sample rate
	if s.ToneFrequency >= s.SampleRate/2 {
		errs = append(errs, fmt.Errorf("tone_frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", s.ToneFrequency, s.SampleRate/2))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Package settings persists the state that outlives one run: the file
// counter and its width, and the block height of the object interleaver.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// =================================
// Defaults
// =================================
const (
	FileName             = "spp_config.yaml"
	CurrentConfigVersion = 1
	DefaultCounterDigits = 6
	DefaultBlockHeight   = 1.0

	// EnvConfigPath overrides the settings file location.
	EnvConfigPath = "SPP_CONFIG"
)

// IndividualObjects holds the interleaver settings.
type IndividualObjects struct {
	BlockHeight float64 `yaml:"block_height"`
}

// Settings is the persisted YAML document.
type Settings struct {
	ConfigVersion     int               `yaml:"config_version"`
	FileCounter       int               `yaml:"file_counter"`
	CounterDigits     int               `yaml:"counter_digits"`
	IndividualObjects IndividualObjects `yaml:"individual_objects"`
}

// Defaults returns the settings of a fresh installation.
func Defaults() Settings {
	return Settings{
		ConfigVersion:     CurrentConfigVersion,
		FileCounter:       0,
		CounterDigits:     DefaultCounterDigits,
		IndividualObjects: IndividualObjects{BlockHeight: DefaultBlockHeight},
	}
}

// DefaultPath returns SPP_CONFIG if set, else spp_config.yaml beside the
// executable.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolving executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName), nil
}

// Load reads path over the defaults. A missing file is not an error; the
// second return value reports whether the file existed.
func Load(path string) (Settings, bool, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, false, nil
	}
	if err != nil {
		return s, false, fmt.Errorf("reading settings: %w", err)
	}
	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return s, true, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	mergeInto(&s, &file)
	return s, true, nil
}

// Save writes the settings through a temp file and rename.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

func mergeInto(dst *Settings, src *Settings) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// the counter is copied as is so a stored 0 persists
	dst.FileCounter = src.FileCounter
	if src.CounterDigits > 0 {
		dst.CounterDigits = src.CounterDigits
	}
	if src.IndividualObjects.BlockHeight > 0 {
		dst.IndividualObjects.BlockHeight = src.IndividualObjects.BlockHeight
	}
}

// Step advances the file counter by one, downwards with reverse. The
// counter wraps to 0 on reaching the largest value of its width, and to
// that value below 0.
func (s *Settings) Step(reverse bool) int {
	top := s.maxCounter()
	if reverse {
		s.FileCounter--
		if s.FileCounter < 0 {
			s.FileCounter = top
		}
	} else {
		s.FileCounter++
		if s.FileCounter >= top {
			s.FileCounter = 0
		}
	}
	return s.FileCounter
}

// Counter renders the file counter zero-padded to its width.
func (s Settings) Counter() string {
	digits := s.CounterDigits
	if digits <= 0 {
		digits = DefaultCounterDigits
	}
	return fmt.Sprintf("%0*d", digits, s.FileCounter)
}

// BlockHeightText renders the block height as a decimal token.
func (s Settings) BlockHeightText() string {
	return strconv.FormatFloat(s.IndividualObjects.BlockHeight, 'f', -1, 64)
}

func (s Settings) maxCounter() int {
	digits := s.CounterDigits
	if digits <= 0 {
		digits = DefaultCounterDigits
	}
	if digits > 18 {
		digits = 18
	}
	top := 1
	for i := 0; i < digits; i++ {
		top *= 10
	}
	return top - 1
}

// Package profile stores CLI preferences that are not library
// configuration: the default installation and output format.
package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileName = "cli.yaml"

// Profile holds saved CLI preferences.
type Profile struct {
	DefaultInstallation string `yaml:"default_installation,omitempty"`
	Output              string `yaml:"output,omitempty"`
}

// Load reads the profile from dir. A missing file yields an empty profile.
func Load(dir string) (*Profile, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Profile{}, nil
		}
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid profile file: %w", err)
	}
	return &p, nil
}

// Save writes the profile to dir, creating it if needed.
func (p *Profile) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fileName), data, 0600)
}

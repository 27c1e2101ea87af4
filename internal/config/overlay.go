package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BlocklistFile is the optional blocklist.yml next to config.yml.
type BlocklistFile struct {
	Domains []string `yaml:"domains"`
}

// OverlayBlocklist appends the domains listed in path to
// cfg.Discovery.Blocklist. A missing file is not an error.
func OverlayBlocklist(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read blocklist: %w", err)
	}

	var bf BlocklistFile
	if err := yaml.Unmarshal(b, &bf); err != nil {
		return fmt.Errorf("parse blocklist %s: %w", path, err)
	}
	cfg.Discovery.Blocklist = append(cfg.Discovery.Blocklist, bf.Domains...)
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfigName is the config file kept in the data dir.
const UserConfigName = "config.yml"

// EnsureUserConfig returns dataDir/config.yml. On first run it is seeded
// from templatePath, or from Default() when the template is missing or is
// not valid YAML. An existing file is never touched.
func EnsureUserConfig(dataDir, templatePath string) (string, error) {
	userPath := filepath.Join(dataDir, UserConfigName)

	switch _, err := os.Stat(userPath); {
	case err == nil:
		return userPath, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("stat %s: %w", userPath, err)
	}

	tmpl, err := os.ReadFile(templatePath)
	if err != nil || !isYAMLMapping(tmpl) {
		return userPath, SaveAtomic(userPath, Default())
	}

	tmp := userPath + ".tmp"
	if err := os.WriteFile(tmp, tmpl, 0o644); err != nil {
		return "", fmt.Errorf("seed %s: %w", userPath, err)
	}
	if err := os.Rename(tmp, userPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("seed %s: %w", userPath, err)
	}
	return userPath, nil
}

func isYAMLMapping(b []byte) bool {
	var m map[string]any
	return yaml.Unmarshal(b, &m) == nil && len(m) > 0
}

package config

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"
)

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := ioutil.ReadFile(filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigurationName, err)
	}
	out.configurationDir = path
	return &out, nil
}

// LoadOrDefault loads the configuration from path, falling back to the
// built-in default if the directory has no configuration.
func LoadOrDefault(path string) (*Configuration, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// Initialize writes the default configuration into dir and loads it. Existing
// configurations are left untouched.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	switch _, err := os.Stat(configPath); {
	case err == nil:
		logger.Printf("Configuration already exists: %s\n", configPath)
	case os.IsNotExist(err):
		logger.Printf("Writing default configuration: %s\n", configPath)
		if err := ioutil.WriteFile(configPath, defaultConfigData, 0644); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return Load(dir)
}

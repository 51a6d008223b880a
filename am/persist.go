package am

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/teranos/twitgraph/distribute"
	"github.com/teranos/twitgraph/errors"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", back3)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// writeConfigFile backs up configPath, then writes v to it as TOML
func writeConfigFile(configPath string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	// Mark this as our own write to prevent reload loops
	if w := GetGlobalWatcher(); w != nil {
		w.MarkOwnWrite()
	}

	if err := os.WriteFile(configPath, buf.Bytes(), DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write config %s", configPath)
	}
	return nil
}

// WriteDefault writes a config file holding the default settings. An
// existing file is only replaced when force is set, and is backed up first.
func WriteDefault(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.WithHint(
			errors.Newf("config file %s already exists", configPath),
			"use --force to overwrite it; the old file is kept as .back1")
	}
	return writeConfigFile(configPath, Defaults())
}

// SetDistributionPolicy rewrites distribution.policy in configPath, keeping
// every other setting in the file as it is. A running watcher picks the
// change up without a restart.
func SetDistributionPolicy(configPath, policy string) error {
	p, err := distribute.ParsePolicy(policy)
	if err != nil {
		return err
	}

	config := map[string]interface{}{}
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, &config); err != nil {
			return errors.Wrapf(err, "failed to parse %s", configPath)
		}
	}

	distribution, ok := config["distribution"].(map[string]interface{})
	if !ok {
		distribution = map[string]interface{}{}
	}
	distribution["policy"] = p.String()
	config["distribution"] = distribution

	return writeConfigFile(configPath, config)
}

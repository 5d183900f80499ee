package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups is the maximum number of user config backups kept.
	MaxBackups = 3

	// BackupSuffix separates the config name from the backup timestamp.
	BackupSuffix = ".bak"
)

// BackupUserConfig copies the user config to a timestamped sibling before it
// is overwritten. Returns "" and nil when there is nothing to back up.
func BackupUserConfig() (string, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return "", nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}

	backupPath := fmt.Sprintf("%s%s.%s", configPath, BackupSuffix, time.Now().Format("20060102-150405.000"))
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// Pruning is best effort; the backup itself succeeded.
	_ = pruneBackups()

	return backupPath, nil
}

// ListUserConfigBackups returns user config backups, newest first.
func ListUserConfigBackups() ([]string, error) {
	configPath := GetUserConfigPath()
	dir := filepath.Dir(configPath)
	prefix := filepath.Base(configPath) + BackupSuffix + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, entry.Name()))
		}
	}

	// Timestamps sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

func pruneBackups() error {
	backups, err := ListUserConfigBackups()
	if err != nil {
		return err
	}
	if len(backups) <= MaxBackups {
		return nil
	}
	for _, backup := range backups[MaxBackups:] {
		_ = os.Remove(backup)
	}
	return nil
}

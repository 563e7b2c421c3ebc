package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves BUDDY_RUNTIME_PATH, relative paths are taken from the home directory.
func GetRuntimePath() string {
	path := os.Getenv("BUDDY_RUNTIME_PATH")
	if path == "" {
		path = ".buddybot"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}

func GetEnvFilePath() string {
	return filepath.Join(GetRuntimePath(), ".env")
}

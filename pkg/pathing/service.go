package pathing

import (
	"log"
	"os"
	"path/filepath"
)

// Ensure directories exist on startup
func init() {
	// Directories that must exist:
	dirs := []string{
		GetDataDir(),
	}

	// Create all directories
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				log.Fatal(err)
			}
		}
	}
}

func GetResultDbPath() string {
	// Join path
	return filepath.Join(GetDataDir(), "picostat-results.db")
}

func GetDataDir() string {
	return "/var/lib/picostat"
}

func GetConfigDir() string {
	return "/etc/picostat"
}

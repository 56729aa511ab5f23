package configuration

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFromFile loads KEY=VALUE files such as config.env and .env.
// Missing files are skipped and variables already set in the OS win.
func LoadEnvFromFile(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

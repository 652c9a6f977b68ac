package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads .env files once per process. ENV_FILE names a single
// file; otherwise every .env from this package up to the module root is
// read, nearest first. Variables already set win unless DOTENV_OVERLOAD=1.
// NO_DOTENV=1 disables loading.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}
	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}
	dir, ok := sourceDir()
	if !ok {
		_ = load(".env")
		return
	}
	walkUp(dir, func(d string) bool {
		_ = load(filepath.Join(d, ".env"))
		return false
	})
}

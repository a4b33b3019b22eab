package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envFiles lists dotenv files loaded before the environment is parsed.
// Variables already present in the process environment win.
var envFiles = []string{".env"}

// parseEnv overlays Config with environment variables named in the struct
// tags. Unset variables leave the current value untouched. A missing .env file
// is not an error; a malformed one or a malformed value panics, like the
// JSON and flag layers do.
func parseEnv(config *Config) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}

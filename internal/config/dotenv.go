package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotenv loads variables from the given .env files, or ".env" when none
// are named, without overriding variables already set. Missing files are not
// an error.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

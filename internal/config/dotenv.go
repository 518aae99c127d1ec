package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv layers env files onto the process environment. godotenv
// never overwrites keys that are already set, so real environment
// variables always win and earlier files shadow later ones. Search
// order: .env.local, then .env.<APP_ENV> when APP_ENV is set, then
// .env. Returns the files that were found.
func LoadDotEnv() []string {
	candidates := []string{".env.local"}
	if env := os.Getenv("APP_ENV"); env != "" {
		candidates = append(candidates, ".env."+env)
	}
	candidates = append(candidates, ".env")

	var found []string
	for _, name := range candidates {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			found = append(found, name)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
	return found
}

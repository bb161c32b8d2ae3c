//go:build integration

package testdb

import (
	"os"

	"github.com/Ketaiwk/10xcards/internal/redact"
)

// Environment variables checked for the test database URL, in order.
const (
	EnvTestDatabaseURL   = "TENXCARDS_TEST_DATABASE_URL"
	EnvDatabaseURL       = "DATABASE_URL"
	EnvConfigDatabaseURL = "TENXCARDS_DATABASE_URL"
)

// GetTestDatabaseURL returns the first configured database URL, or "".
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvTestDatabaseURL, EnvDatabaseURL, EnvConfigDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func maskDatabaseURL(dbURL string) string {
	return redact.String(dbURL)
}

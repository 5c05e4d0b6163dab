// Package config reads the client's settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultAPIURL  = "http://localhost:8080"
	DefaultDataDir = "./data"
	DefaultHost    = "localhost"
	DefaultPort    = "8090"
)

type Config struct {
	// APIURL is the QnA server's scheme and host
	APIURL  string
	DataDir string
	Host    string
	Port    string
	// Token, when set, replaces the stored token on startup
	Token string
}

// Load reads QNA_API_URL, QNA_DATA_DIR, QNA_HOST, QNA_PORT and QNA_TOKEN.
// The token falls back to a ./token file.
func Load() Config {
	return Config{
		APIURL:  strings.TrimRight(getEnv("QNA_API_URL", DefaultAPIURL), "/"),
		DataDir: getEnv("QNA_DATA_DIR", DefaultDataDir),
		Host:    getEnv("QNA_HOST", DefaultHost),
		Port:    getEnv("QNA_PORT", DefaultPort),
		Token:   getToken(),
	}
}

// DBPath is the durable store inside the data directory
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "client.db")
}

func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// PageURL is the address the local front end is served at
func (c Config) PageURL() string {
	return "http://" + c.Addr() + "/"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getToken() string {
	if token := os.Getenv("QNA_TOKEN"); token != "" {
		return strings.TrimSpace(token)
	}

	tokenBytes, err := os.ReadFile("./token")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(tokenBytes))
}

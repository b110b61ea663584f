package conf

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the server configuration loaded from a TOML file with
// environment variable overrides for the secrets.
type Config struct {
	HTTP struct {
		Address        string   `toml:"address"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"http"`
}

func Default() Config {
	var c Config
	c.HTTP.Address = ":8080"
	c.HTTP.AllowedOrigins = []string{"http://localhost:3000"}
	return c
}

// Load reads the TOML config at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	c := Default()
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(body, &c); err != nil {
		return c, fmt.Errorf("failed to parse config file: %w", err)
	}
	return c, nil
}

func GetPgConnStrFromEnv() string {
	host := os.Getenv("POSTGRES_HOST")
	pw := os.Getenv("POSTGRES_PW")
	user := os.Getenv("POSTGRES_USER")
	port := os.Getenv("POSTGRES_PORT")
	db := os.Getenv("POSTGRES_DB")
	ssl := os.Getenv("POSTGRES_SSLMODE")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pw, db, ssl)
}

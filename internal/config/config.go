package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string

	SessionSecret string
	Port          string

	// BcryptCost controls the password hashing cost factor.
	BcryptCost int
}

// LoadConfig reads configuration from the environment, after loading an
// optional .env file. Missing values fall back to development defaults.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:        getenv("DB_USER", "memo"),
		DBPassword:    getenv("DB_PASSWORD", "memo"),
		DBHost:        getenv("DB_HOST", "localhost:3306"),
		DBName:        getenv("DB_NAME", "my_memo_app"),
		SessionSecret: getenv("SESSION_SECRET", "your-secret-key"),
		Port:          getenv("PORT", "8000"),
		BcryptCost:    bcrypt.DefaultCost,
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil && cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			cfg.BcryptCost = cost
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

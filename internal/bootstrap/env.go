package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv loads a local .env file when present. Production deployments set
// real environment variables instead.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, relying on process environment")
	}
}

package initializers

import (
	"github.com/joho/godotenv"
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		Log.Info("No .env file found, relying on process environment")
	}
}

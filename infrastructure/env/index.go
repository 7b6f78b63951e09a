package env

import (
	"github.com/joho/godotenv"

	"livegate.io/infrastructure/logger"
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		logger.Info("error loading env variables")
	}
}

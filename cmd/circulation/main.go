package main

import (
	"errors"
	stdLog "log"
	"os"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/app"
	"github.com/Astemirdum/circulation-service/circulation/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		stdLog.Fatal("load envs from .env ", zap.Error(err))
	}
	cfg := config.NewConfig(
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}

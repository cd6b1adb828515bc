package main

import (
	"go.uber.org/zap"

	"kidcalc/internal/app"
	"kidcalc/internal/pkg/logger"
)

func main() {
	log := logger.New()

	cfg, err := app.LoadCfg()
	if err != nil {
		log.Fatal("config load failed", zap.Error(err))
	}

	a := app.New(cfg)
	if err := a.Run(); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

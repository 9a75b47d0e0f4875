package main

import (
	"fxconvert/internal/app"

	"github.com/sirupsen/logrus"
)

// @title fxconvert API
// @version 1.0
// @description Currency conversion with cached upstream rates and per-user daily quotas.
// @BasePath /api/v1
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Bearer {token}"
func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Fatal("fxconvert stopped")
	}
}

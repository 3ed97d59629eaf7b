// Package main is the AWS Lambda entry point of the bridge.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/nnnkkk7/snowflake-bridge/pkg/config"
	"github.com/nnnkkk7/snowflake-bridge/pkg/logging"
	"github.com/nnnkkk7/snowflake-bridge/server/handlers"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		logging.NewDefault(false).Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.NewDefault(settings.Debug)
	app, err := handlers.NewApp(settings, logger)
	if err != nil {
		logger.Error("failed to start bridge", "err", err)
		os.Exit(1)
	}

	lambda.Start(app.Router.HandleGatewayEvent)
}

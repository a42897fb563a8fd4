// Command lambda serves the event operations as an AWS Lambda function
// behind API Gateway.
package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/okian/sportsevents/internal/adapters/lambda"
	"github.com/okian/sportsevents/internal/adapters/repository"
	"github.com/okian/sportsevents/internal/app"
	"github.com/okian/sportsevents/internal/config"
	"github.com/okian/sportsevents/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	// The store is opened once per execution environment and reused by
	// every invocation it serves.
	store, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatal(ctx, "open store", logger.String("store_backend", cfg.StoreBackend), logger.Error(err))
	}

	svc, err := app.New(
		app.WithStore(store),
		app.WithLogger(log),
		app.WithEventIDPrefix(cfg.EventIDPrefix),
	)
	if err != nil {
		log.Fatal(ctx, "create service", logger.Error(err))
	}

	handler, err := lambda.Handler(cfg.LambdaHandler, svc)
	if err != nil {
		log.Fatal(ctx, "select handler", logger.Error(err))
	}

	log.Info(ctx, "lambda ready",
		logger.String("handler", cfg.LambdaHandler),
		logger.String("table", cfg.TableName),
	)
	awslambda.Start(handler)
}

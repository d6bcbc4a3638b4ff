// Package main runs the playbooks service behind an AWS Lambda Function URL.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/amphitheatre-app/playbooks/internal/app"
	"github.com/amphitheatre-app/playbooks/internal/config"
	"github.com/amphitheatre-app/playbooks/internal/lambdaapi"
	"github.com/amphitheatre-app/playbooks/internal/logger"
)

func main() {
	cfg := config.MustLoad("")
	log := logger.Initialize(cfg.Env, cfg.GetLogLevel())

	a := app.MustInitialize(context.Background(), cfg, log)
	lambda.Start(lambdaapi.NewHandler(a))
}

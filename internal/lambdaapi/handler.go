// Package lambdaapi provides Lambda handler creation for AWS Lambda Function URLs,
// integrating the playbooks service with the HTTP router through algnhsa adapter.
package lambdaapi

import (
	"github.com/akrylysov/algnhsa"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/amphitheatre-app/playbooks/internal/app"
)

// NewHandler creates a new Lambda handler serving the router of a.
// It uses algnhsa to adapt the chi router to work with Lambda Function URLs.
// Log streams are buffered by Lambda and only reach the caller once the
// invocation ends.
func NewHandler(a *app.App) lambda.Handler {
	return algnhsa.New(a.Handler(), nil)
}

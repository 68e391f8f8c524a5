package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/letmevibethatforyou/searchresult"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "summarize-hits",
		Usage: "Summarize search responses posted through API Gateway",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "disable-facet",
				Usage:   "Built-in facet type to reject; repeatable",
				EnvVars: []string{"DISABLED_FACETS"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context

	registry := newRegistry(c.StringSlice("disable-facet"))
	handler := NewHandler(registry)

	slog.InfoContext(ctx, "Starting summarize-hits", "facet_types", registry.Types())

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleRequest)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}

// newRegistry copies the built-in facet types, leaving out the disabled ones.
func newRegistry(disabled []string) *searchresult.FacetRegistry {
	skip := make(map[string]bool, len(disabled))
	for _, typ := range disabled {
		skip[strings.ToLower(strings.TrimSpace(typ))] = true
	}

	registry := searchresult.NewFacetRegistry()
	for _, typ := range searchresult.DefaultFacetRegistry.Types() {
		if skip[typ] {
			continue
		}
		ctor, _ := searchresult.DefaultFacetRegistry.Lookup(typ)
		registry.Register(typ, ctor)
	}
	return registry
}

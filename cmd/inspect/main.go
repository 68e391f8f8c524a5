package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/letmevibethatforyou/searchresult"
	"github.com/letmevibethatforyou/searchresult/ddb"
	"github.com/urfave/cli/v2"
)

const (
	defaultIDAttribute = "pk"
	defaultTimeout     = 10 * time.Second
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	app := &cli.App{
		Name:  "inspect",
		Usage: "Map a search response into hits, highlights and facets",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Search response to read; stdin when empty",
			},
			&cli.StringFlag{
				Name:    "ddb-table",
				Usage:   "Scan this DynamoDB table instead of reading a response",
				EnvVars: []string{"TABLE_NAME"},
			},
			&cli.StringFlag{
				Name:  "id-attribute",
				Usage: "Item attribute used as the hit id when scanning DynamoDB",
				Value: defaultIDAttribute,
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Slash separated hits path, e.g. docs/_source",
			},
			&cli.StringSliceFlag{
				Name:  "facet",
				Usage: "Facet type to build; repeatable",
			},
			&cli.BoolFlag{
				Name:  "first",
				Usage: "Only map the first hit",
			},
			&cli.IntFlag{
				Name:  "status",
				Usage: "HTTP status the response was received with",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the DynamoDB scan",
				Value: defaultTimeout,
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

	var opts []searchresult.Option
	if path := strings.TrimSpace(c.String("path")); path != "" {
		opts = append(opts, searchresult.WithPath(splitPath(path)...))
	}
	if status := c.Int("status"); status != 0 {
		opts = append(opts, searchresult.WithResponseCode(status))
	}

	var (
		res *searchresult.SearchResult
		err error
	)
	if table := strings.TrimSpace(c.String("ddb-table")); table != "" {
		res, err = scanTable(ctx, table, c.String("id-attribute"), c.Duration("timeout"), opts)
	} else {
		res, err = readResponse(ctx, c.String("file"), opts)
	}
	if err != nil {
		return err
	}

	report, err := buildReport(res, c.StringSlice("facet"), c.Bool("first"))
	if err != nil {
		return fmt.Errorf("failed to map response: %w", err)
	}
	if !report.Succeeded {
		slog.WarnContext(ctx, "search engine reported a failure", "error", report.Error)
	}

	return printReport(c.App.Writer, report)
}

func readResponse(ctx context.Context, file string, opts []searchresult.Option) (*searchresult.SearchResult, error) {
	var (
		data []byte
		err  error
	)
	if file == "" {
		slog.InfoContext(ctx, "reading search response from stdin")
		data, err = io.ReadAll(os.Stdin)
	} else {
		slog.InfoContext(ctx, "reading search response", "file", file)
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	res, err := searchresult.Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return res, nil
}

func scanTable(ctx context.Context, table, idAttribute string, timeout time.Duration, opts []searchresult.Option) (*searchresult.SearchResult, error) {
	if timeout <= 0 {
		slog.WarnContext(ctx, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg)

	slog.InfoContext(ctx, "scanning table", "table", table, "id_attribute", idAttribute)
	out, err := client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan table: %w", err)
	}
	if out.LastEvaluatedKey != nil {
		slog.WarnContext(ctx, "scan returned a partial page", "count", out.Count)
	}

	return ddb.FromScanOutput(out, idAttribute, opts...)
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

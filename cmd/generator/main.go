package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/letmevibethatforyou/searchresult/ddb"
	"github.com/urfave/cli/v2"
)

const indexName = "vehicles"

func insertVehicle(ctx context.Context, client *dynamodb.Client, tableName string, doc document) error {
	object := map[string]any{
		"make":  doc.Vehicle.Make,
		"model": doc.Vehicle.Model,
		"year":  doc.Vehicle.Year,
		"color": doc.Vehicle.Color,
	}
	item, err := attributevalue.MarshalMap(ddb.Record{
		ID:        doc.ID,
		IndexName: indexName,
		Object:    object,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle record: %w", err)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}

	slog.InfoContext(ctx, "Successfully inserted vehicle",
		"id", doc.ID,
		"make", doc.Vehicle.Make,
		"model", doc.Vehicle.Model,
		"year", doc.Vehicle.Year,
		"color", doc.Vehicle.Color,
	)
	return nil
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	tableName := c.String("table-name")
	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if c.IsSet("seed") {
		seed := c.Uint64("seed")
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	docs := generateDocuments(rng, count)

	if tableName == "" {
		data, err := buildResponse(docs, c.String("highlight"))
		if err != nil {
			return err
		}
		if out := c.String("out"); out != "" {
			slog.InfoContext(ctx, "Writing search response", "file", out, "count", count)
			return os.WriteFile(out, data, 0o644)
		}
		_, err = fmt.Fprintln(c.App.Writer, string(data))
		return err
	}

	slog.InfoContext(ctx, "Seeding DynamoDB table", "table", tableName, "count", count)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg)

	for i, doc := range docs {
		if err := insertVehicle(ctx, client, tableName, doc); err != nil {
			return fmt.Errorf("failed to insert vehicle %d: %w", i+1, err)
		}
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all vehicles", "count", count)
	return nil
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate random vehicles as a search response or into DynamoDB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "table-name",
				Aliases: []string{"t"},
				Usage:   "DynamoDB table to seed; writes a search response when empty",
				EnvVars: []string{"TABLE_NAME"},
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "File to write the search response to; stdout when empty",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of vehicles to generate",
				Value:   10,
			},
			&cli.StringFlag{
				Name:  "highlight",
				Usage: "Make to highlight in the generated hits",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "Seed for reproducible output",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

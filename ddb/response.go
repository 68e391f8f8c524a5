// Package ddb reads DynamoDB items, from stream events or from Query and Scan
// outputs, as search responses so they can be mapped like any other hits.
package ddb

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/searchresult"
)

type hitJSON struct {
	Index  string         `json:"_index,omitempty"`
	ID     string         `json:"_id,omitempty"`
	Source map[string]any `json:"_source"`
}

type documentJSON struct {
	Hits struct {
		Total int64     `json:"total"`
		Hits  []hitJSON `json:"hits"`
	} `json:"hits"`
}

// FromStreamEvent turns the inserted and modified records of a stream event
// into hits: pk becomes the hit id, sk its index and object its source.
// Removals and records without a complete new image are skipped.
func FromStreamEvent(ctx context.Context, event StreamEvent, opts ...searchresult.Option) (*searchresult.SearchResult, error) {
	hits := make([]hitJSON, 0, len(event.Records))

	for _, record := range event.Records {
		switch OperationType(record.EventName) {
		case OperationTypeInsert, OperationTypeModify:
		default:
			slog.DebugContext(ctx, "Ignoring stream record", "event_id", record.EventID, "event_type", record.EventName)
			continue
		}

		if record.Change.NewImage == nil {
			slog.WarnContext(ctx, "No new image for insert/modify operation, skipping record", "event_id", record.EventID)
			continue
		}
		parsed, err := UnmarshalRecord(record.Change.NewImage)
		if err != nil {
			slog.WarnContext(ctx, "Failed to unmarshal record, skipping", "event_id", record.EventID, "error", err)
			continue
		}
		if parsed.ID == "" || parsed.IndexName == "" || parsed.Object == nil {
			slog.WarnContext(ctx, "Incomplete record, skipping", "event_id", record.EventID, "id", parsed.ID, "index", parsed.IndexName)
			continue
		}

		hits = append(hits, hitJSON{Index: parsed.IndexName, ID: parsed.ID, Source: parsed.Object})
	}

	return parse(hits, int64(len(hits)), opts)
}

// FromQueryOutput turns the items of a Query into hits, identified by
// idAttribute. The reported total is the output Count.
func FromQueryOutput(out *dynamodb.QueryOutput, idAttribute string, opts ...searchresult.Option) (*searchresult.SearchResult, error) {
	if out == nil {
		return nil, errors.WithSecondaryError(searchresult.ErrInvalidDocument, errors.New("nil query output"))
	}
	return fromItems(out.Items, out.Count, idAttribute, opts)
}

// FromScanOutput turns the items of a Scan into hits, identified by
// idAttribute. The reported total is the output Count.
func FromScanOutput(out *dynamodb.ScanOutput, idAttribute string, opts ...searchresult.Option) (*searchresult.SearchResult, error) {
	if out == nil {
		return nil, errors.WithSecondaryError(searchresult.ErrInvalidDocument, errors.New("nil scan output"))
	}
	return fromItems(out.Items, out.Count, idAttribute, opts)
}

func fromItems(items []map[string]types.AttributeValue, count int32, idAttribute string, opts []searchresult.Option) (*searchresult.SearchResult, error) {
	if idAttribute == "" {
		return nil, errors.WithSecondaryError(searchresult.ErrInvalidOption, errors.New("id attribute must not be empty"))
	}

	hits := make([]hitJSON, 0, len(items))
	for i, item := range items {
		var source map[string]any
		if err := attributevalue.UnmarshalMap(item, &source); err != nil {
			return nil, errors.WithSecondaryError(
				searchresult.ErrInvalidDocument,
				errors.Wrapf(err, "failed to unmarshal item %d", i),
			)
		}
		hits = append(hits, hitJSON{ID: itemID(source[idAttribute]), Source: source})
	}

	return parse(hits, int64(count), opts)
}

// itemID renders a key attribute as a hit id. Non-string keys are formatted.
func itemID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func parse(hits []hitJSON, total int64, opts []searchresult.Option) (*searchresult.SearchResult, error) {
	var doc documentJSON
	doc.Hits.Total = total
	doc.Hits.Hits = hits

	data, err := sonic.ConfigStd.Marshal(doc)
	if err != nil {
		return nil, errors.WithSecondaryError(
			searchresult.ErrInvalidDocument,
			errors.Wrapf(err, "failed to encode items"),
		)
	}
	return searchresult.Parse(data, opts...)
}

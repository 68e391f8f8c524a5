package ddb

import (
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// StreamEvent is the payload a DynamoDB stream delivers to a consumer.
type StreamEvent struct {
	Records []StreamRecord `json:"Records"`
}

// StreamRecord is one change notification of a stream event.
type StreamRecord struct {
	AWSRegion      string       `json:"awsRegion"`
	Change         StreamChange `json:"dynamodb"`
	EventID        string       `json:"eventID"`
	EventName      string       `json:"eventName"`
	EventSource    string       `json:"eventSource"`
	EventVersion   string       `json:"eventVersion"`
	EventSourceArn string       `json:"eventSourceARN"`
}

// StreamChange holds the keys and item images of a change.
type StreamChange struct {
	ApproximateCreationDateTime int64
	Keys                        map[string]types.AttributeValue
	NewImage                    map[string]types.AttributeValue
	OldImage                    map[string]types.AttributeValue
	SequenceNumber              string
	SizeBytes                   int64
	StreamViewType              string
}

type streamChangeJSON struct {
	ApproximateCreationDateTime int64                      `json:"ApproximateCreationDateTime,omitempty"`
	Keys                        map[string]json.RawMessage `json:"Keys,omitempty"`
	NewImage                    map[string]json.RawMessage `json:"NewImage,omitempty"`
	OldImage                    map[string]json.RawMessage `json:"OldImage,omitempty"`
	SequenceNumber              string                     `json:"SequenceNumber"`
	SizeBytes                   int64                      `json:"SizeBytes"`
	StreamViewType              string                     `json:"StreamViewType"`
}

// UnmarshalJSON decodes the DynamoDB JSON images of a change into attribute
// values.
func (c *StreamChange) UnmarshalJSON(data []byte) error {
	var wire streamChangeJSON
	if err := sonic.ConfigStd.Unmarshal(data, &wire); err != nil {
		return err
	}

	keys, err := decodeImage(wire.Keys)
	if err != nil {
		return errors.Wrap(err, "Keys")
	}
	newImage, err := decodeImage(wire.NewImage)
	if err != nil {
		return errors.Wrap(err, "NewImage")
	}
	oldImage, err := decodeImage(wire.OldImage)
	if err != nil {
		return errors.Wrap(err, "OldImage")
	}

	*c = StreamChange{
		ApproximateCreationDateTime: wire.ApproximateCreationDateTime,
		Keys:                        keys,
		NewImage:                    newImage,
		OldImage:                    oldImage,
		SequenceNumber:              wire.SequenceNumber,
		SizeBytes:                   wire.SizeBytes,
		StreamViewType:              wire.StreamViewType,
	}
	return nil
}

// OperationType is the kind of change a stream record reports.
type OperationType string

const (
	OperationTypeInsert OperationType = "INSERT"
	OperationTypeModify OperationType = "MODIFY"
	OperationTypeRemove OperationType = "REMOVE"
)

// Record is an indexed item: pk identifies the document, sk names the index
// it belongs to and object holds the document itself.
type Record struct {
	ID        string         `dynamodbav:"pk"`
	IndexName string         `dynamodbav:"sk"`
	Object    map[string]any `dynamodbav:"object"`
}

// UnmarshalRecord converts an item image into a Record.
func UnmarshalRecord(image map[string]types.AttributeValue) (Record, error) {
	var record Record
	if err := attributevalue.UnmarshalMap(image, &record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// UnmarshalAttributeValueMap decodes an item written in DynamoDB JSON, as
// found in stream images and exported tables.
func UnmarshalAttributeValueMap(data []byte) (map[string]types.AttributeValue, error) {
	var wire map[string]json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	return decodeImage(wire)
}

func decodeImage(wire map[string]json.RawMessage) (map[string]types.AttributeValue, error) {
	if wire == nil {
		return nil, nil
	}
	image := make(map[string]types.AttributeValue, len(wire))
	for name, raw := range wire {
		av, err := decodeAttributeValue(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", name)
		}
		image[name] = av
	}
	return image, nil
}

// decodeAttributeValue decodes one {"<type>": value} attribute.
func decodeAttributeValue(raw json.RawMessage) (types.AttributeValue, error) {
	var tagged map[string]json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, errors.Newf("expected exactly one type descriptor, got %d", len(tagged))
	}

	for typ, value := range tagged {
		switch typ {
		case "S":
			var s string
			err := sonic.ConfigStd.Unmarshal(value, &s)
			return &types.AttributeValueMemberS{Value: s}, err
		case "N":
			var n string
			err := sonic.ConfigStd.Unmarshal(value, &n)
			return &types.AttributeValueMemberN{Value: n}, err
		case "B":
			var b []byte
			err := sonic.ConfigStd.Unmarshal(value, &b)
			return &types.AttributeValueMemberB{Value: b}, err
		case "BOOL":
			var b bool
			err := sonic.ConfigStd.Unmarshal(value, &b)
			return &types.AttributeValueMemberBOOL{Value: b}, err
		case "NULL":
			var b bool
			err := sonic.ConfigStd.Unmarshal(value, &b)
			return &types.AttributeValueMemberNULL{Value: b}, err
		case "SS":
			var ss []string
			err := sonic.ConfigStd.Unmarshal(value, &ss)
			return &types.AttributeValueMemberSS{Value: ss}, err
		case "NS":
			var ns []string
			err := sonic.ConfigStd.Unmarshal(value, &ns)
			return &types.AttributeValueMemberNS{Value: ns}, err
		case "BS":
			var bs [][]byte
			err := sonic.ConfigStd.Unmarshal(value, &bs)
			return &types.AttributeValueMemberBS{Value: bs}, err
		case "M":
			var m map[string]json.RawMessage
			if err := sonic.ConfigStd.Unmarshal(value, &m); err != nil {
				return nil, err
			}
			members, err := decodeImage(m)
			if err != nil {
				return nil, err
			}
			if members == nil {
				members = map[string]types.AttributeValue{}
			}
			return &types.AttributeValueMemberM{Value: members}, nil
		case "L":
			var l []json.RawMessage
			if err := sonic.ConfigStd.Unmarshal(value, &l); err != nil {
				return nil, err
			}
			list := make([]types.AttributeValue, 0, len(l))
			for _, elem := range l {
				av, err := decodeAttributeValue(elem)
				if err != nil {
					return nil, err
				}
				list = append(list, av)
			}
			return &types.AttributeValueMemberL{Value: list}, nil
		default:
			return nil, errors.Newf("unknown attribute type %q", typ)
		}
	}
	return nil, nil
}

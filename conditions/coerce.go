package conditions

import (
	"encoding/json"
	"fmt"
	"strings"

	"dynoquery/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// Decimal is an arbitrary-precision number sent to DynamoDB as an N value
type Decimal struct {
	decimal.Decimal
}

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler
func (d Decimal) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: d.String()}, nil
}

// StringSet is sent to DynamoDB as an SS value
type StringSet []string

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler
func (s StringSet) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberSS{Value: []string(s)}, nil
}

// Coerce converts a raw operator-entered value into the typed value for attrType.
//
// Two conversions are kept for compatibility with stored queries even though they are
// surprising: list values are split into their characters, and boolean values are true
// for any non-empty string (so "false" is true).
func Coerce(attrType models.AttributeType, raw string) (interface{}, error) {
	switch attrType {
	case models.StringType:
		return raw, nil
	case models.NumberType:
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", models.ErrInvalidValue, raw)
		}
		return Decimal{d}, nil
	case models.BinaryType:
		return []byte(raw), nil
	case models.BooleanType:
		return raw != "", nil
	case models.MapType:
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("%w: map value must be a JSON object: %v", models.ErrInvalidValue, err)
		}
		return m, nil
	case models.ListType:
		chars := make([]string, 0, len(raw))
		for _, r := range raw {
			chars = append(chars, string(r))
		}
		return chars, nil
	case models.SetType:
		members := splitSet(raw)
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: a set needs at least one member", models.ErrInvalidValue)
		}
		return StringSet(members), nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedAttributeType, attrType)
	}
}

// splitSet parses "(a, b, c)" or "a,b,c" into its trimmed members
func splitSet(raw string) []string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// coerceList coerces each comma separated member of raw, used by in
func coerceList(attrType models.AttributeType, raw string) ([]interface{}, error) {
	members := splitSet(raw)
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: in requires at least one value", models.ErrInvalidValue)
	}
	out := make([]interface{}, 0, len(members))
	for _, m := range members {
		v, err := Coerce(attrType, m)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

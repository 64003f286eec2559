package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"dynoquery/models"

	"github.com/tidwall/gjson"
)

// Canonical returns the normalized form of p used for hashing and equality. The cursor is
// excluded; defaulted fields are filled so that equivalent parameters compare equal.
func Canonical(p *models.QueryParameters) *models.QueryParameters {
	out := Clone(p)
	if out.Index == "" {
		out.Index = models.TableIndex
	}
	if out.KeyCondition != nil && out.KeyCondition.PartitionType == "" {
		out.KeyCondition.PartitionType = models.StringType
	}
	for i := range out.FilterConditions {
		f := &out.FilterConditions[i]
		if f.Operator == models.OpSize && f.SizeOperator == "" {
			f.SizeOperator = models.OpEqual
		}
	}
	return out
}

// ContentHash is the hex sha256 over the canonical JSON serialization of p
func ContentHash(p *models.QueryParameters) (string, error) {
	data, err := json.Marshal(Canonical(p))
	if err != nil {
		return "", fmt.Errorf("failed to serialize query parameters: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Equal reports whether a and b describe the same query
func Equal(a, b *models.QueryParameters) bool {
	ha, errA := ContentHash(a)
	hb, errB := ContentHash(b)
	return errA == nil && errB == nil && ha == hb
}

// EncodePayload serializes a record embedding QueryParameters for storage
func EncodePayload(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}
	return data, nil
}

// DecodePayload parses payload into out; params must point at the QueryParameters embedded
// in out. Any shape or invariant violation is reported as ErrMalformedStoredPayload.
func DecodePayload(payload []byte, out interface{}, params *models.QueryParameters) error {
	if !gjson.ValidBytes(payload) {
		return fmt.Errorf("%w: payload is not valid JSON", models.ErrMalformedStoredPayload)
	}
	if kc := gjson.GetBytes(payload, "key_condition"); kc.Exists() && kc.Type != gjson.Null && !kc.IsObject() {
		return fmt.Errorf("%w: key_condition is %s, not an object", models.ErrMalformedStoredPayload, kc.Type)
	}
	if fc := gjson.GetBytes(payload, "filter_conditions"); fc.Exists() && fc.Type != gjson.Null && !fc.IsArray() {
		return fmt.Errorf("%w: filter_conditions is %s, not a list", models.ErrMalformedStoredPayload, fc.Type)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedStoredPayload, err)
	}
	if params.FilterConditions == nil {
		params.FilterConditions = []models.FilterCondition{}
	}
	if params.Index == "" {
		params.Index = models.TableIndex
	}
	if err := Validate(params); err != nil {
		return fmt.Errorf("%w: %v", models.ErrMalformedStoredPayload, err)
	}
	return nil
}

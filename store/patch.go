package store

import (
	"fmt"
	"strings"

	"dynoquery/models"

	"github.com/tidwall/gjson"
)

// PathValue is one JSON-path assignment of a partial update
type PathValue struct {
	Path  string
	Value string // raw JSON text
}

// LeafPaths walks a partial payload and returns one assignment per leaf field. Nested
// objects are descended into so sibling fields of the stored document survive; arrays
// and empty objects are assigned whole.
func LeafPaths(partial []byte) ([]PathValue, error) {
	if len(strings.TrimSpace(string(partial))) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(partial) {
		return nil, fmt.Errorf("%w: partial payload is not valid JSON", models.ErrInvalidValue)
	}
	root := gjson.ParseBytes(partial)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: partial payload must be a JSON object", models.ErrInvalidValue)
	}

	var out []PathValue
	if err := walk(root, "$", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(node gjson.Result, prefix string, out *[]PathValue) error {
	var err error
	node.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if strings.ContainsAny(name, `"\`) {
			err = fmt.Errorf("%w: field name %q cannot be addressed", models.ErrInvalidValue, name)
			return false
		}
		path := prefix + `."` + name + `"`
		if value.IsObject() && len(value.Map()) > 0 {
			err = walk(value, path, out)
			return err == nil
		}
		*out = append(*out, PathValue{Path: path, Value: value.Raw})
		return true
	})
	return err
}

// NamePath is the JSON path of the name field used for search and ordering
const NamePath = `$."name"`

// FieldPath returns the JSON path addressing a top-level payload field
func FieldPath(field string) string {
	return `$."` + field + `"`
}

package results

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"

	"dynoquery/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Cell is one attribute of a row. Value is nil when the row lacks the column.
type Cell struct {
	Column string
	Value  types.AttributeValue
}

// IsNull reports whether the row had no such attribute
func (c Cell) IsNull() bool {
	return c.Value == nil
}

// String renders the cell for display
func (c Cell) String() string {
	return FormatValue(c.Value)
}

// Row is one item laid out on the page columns
type Row struct {
	Cells []Cell
}

// Page is one fetched page with its own merged column set
type Page struct {
	Columns []string
	Rows    []Row
	Items   []models.Item
}

// KeyColumns returns the leading columns of every page: the table keys followed by each
// secondary index key pair in declared order, without duplicates
func KeyColumns(meta *models.TableMetadata) []string {
	if meta == nil {
		return nil
	}
	var cols []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	add(meta.PrimaryKeyName)
	add(meta.SortKeyName)
	for _, idx := range meta.SecondaryIndexes {
		add(idx.PrimaryKeyName)
		add(idx.SortKeyName)
	}
	return cols
}

// MergeSchema computes the column order of one page: key columns first, then every other
// attribute in first-seen order across the page's items. Attributes within one item are
// taken in name order.
func MergeSchema(meta *models.TableMetadata, items []models.Item) []string {
	cols := KeyColumns(meta)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	for _, item := range items {
		names := make([]string, 0, len(item))
		for name := range item {
			if !seen[name] {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	return cols
}

// BuildPage lays items out on their merged schema
func BuildPage(meta *models.TableMetadata, items []models.Item) *Page {
	cols := MergeSchema(meta, items)
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		cells := make([]Cell, len(cols))
		for i, col := range cols {
			cells[i] = Cell{Column: col, Value: item[col]}
		}
		rows = append(rows, Row{Cells: cells})
	}
	return &Page{Columns: cols, Rows: rows, Items: items}
}

// FormatValue renders an attribute value as display text. An absent value renders empty.
func FormatValue(av types.AttributeValue) string {
	switch v := av.(type) {
	case nil:
		return ""
	case *types.AttributeValueMemberS:
		return v.Value
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return base64.StdEncoding.EncodeToString(v.Value)
	case *types.AttributeValueMemberBOOL:
		if v.Value {
			return "true"
		}
		return "false"
	case *types.AttributeValueMemberNULL:
		return "null"
	case *types.AttributeValueMemberSS:
		return "{" + strings.Join(v.Value, ", ") + "}"
	case *types.AttributeValueMemberNS:
		return "{" + strings.Join(v.Value, ", ") + "}"
	case *types.AttributeValueMemberBS:
		parts := make([]string, len(v.Value))
		for i, b := range v.Value {
			parts[i] = base64.StdEncoding.EncodeToString(b)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		var out interface{}
		if err := attributevalue.Unmarshal(av, &out); err != nil {
			return "<unreadable>"
		}
		data, err := json.Marshal(out)
		if err != nil {
			return "<unreadable>"
		}
		return string(data)
	}
}

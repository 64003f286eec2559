package models

import "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

// AttributeType is the declared type of a condition value
type AttributeType string

const (
	StringType  AttributeType = "string"
	NumberType  AttributeType = "number"
	BinaryType  AttributeType = "binary"
	BooleanType AttributeType = "boolean"
	MapType     AttributeType = "map"
	ListType    AttributeType = "list"
	SetType     AttributeType = "set"
)

// AttributeTypes lists every supported attribute type in display order
var AttributeTypes = []AttributeType{StringType, NumberType, BinaryType, BooleanType, MapType, ListType, SetType}

// Operator is a condition operator as typed by the operator
type Operator string

const (
	OpEqual              Operator = "=="
	OpGreaterThan        Operator = ">"
	OpLessThan           Operator = "<"
	OpLessThanEqual      Operator = "<="
	OpGreaterThanEqual   Operator = ">="
	OpBetween            Operator = "between"
	OpBeginsWith         Operator = "begins_with"
	OpNotEqual           Operator = "!="
	OpIn                 Operator = "in"
	OpAttributeExists    Operator = "attribute_exists"
	OpAttributeNotExists Operator = "attribute_not_exists"
	OpAttributeType      Operator = "attribute_type"
	OpContains           Operator = "contains"
	OpSize               Operator = "size"
)

// KeyOperators are the operators legal on a sort key
var KeyOperators = []Operator{
	OpEqual, OpGreaterThan, OpLessThan, OpLessThanEqual, OpGreaterThanEqual, OpBetween, OpBeginsWith,
}

// FilterOperators are the operators legal in a filter condition
var FilterOperators = append(append([]Operator{}, KeyOperators...),
	OpNotEqual, OpIn, OpAttributeExists, OpAttributeNotExists, OpAttributeType, OpContains, OpSize,
)

// IsKeyOperator reports whether op may be used in a key condition
func IsKeyOperator(op Operator) bool {
	for _, o := range KeyOperators {
		if o == op {
			return true
		}
	}
	return false
}

// IsFilterOperator reports whether op may be used in a filter condition
func IsFilterOperator(op Operator) bool {
	for _, o := range FilterOperators {
		if o == op {
			return true
		}
	}
	return false
}

// TableIndex is the index name that selects the base table
const TableIndex = "table"

// AttributeCondition is one typed predicate on an attribute. Values are kept as the raw
// strings the operator entered and coerced when the expression is built.
type AttributeCondition struct {
	AttrType AttributeType `json:"attr_type"`
	Operator Operator      `json:"operator"`
	Value    string        `json:"value,omitempty"`
	// Value2 is the upper bound for between
	Value2 string `json:"value2,omitempty"`
	// SizeOperator is the comparison applied by size; defaults to ==
	SizeOperator Operator `json:"size_operator,omitempty"`
}

// KeyCondition is an equality on the partition key optionally ANDed with a sort key predicate
type KeyCondition struct {
	PartitionValue string              `json:"partition_value"`
	PartitionType  AttributeType       `json:"partition_type,omitempty"`
	SortCondition  *AttributeCondition `json:"sort_condition,omitempty"`
}

// FilterCondition is an attribute condition on a named attribute
type FilterCondition struct {
	AttrName string `json:"attr_name"`
	AttributeCondition
}

// Cursor is the opaque continuation token returned by the remote store
type Cursor map[string]types.AttributeValue

// QueryParameters captures one query or scan intent
type QueryParameters struct {
	ScanMode         bool              `json:"scan_mode"`
	PrimaryKeyName   string            `json:"primary_key_name"`
	SortKeyName      string            `json:"sort_key_name,omitempty"`
	Index            string            `json:"index"`
	KeyCondition     *KeyCondition     `json:"key_condition,omitempty"`
	FilterConditions []FilterCondition `json:"filter_conditions"`
	PaginationCursor Cursor            `json:"-"`
}

// IsUnfilteredScan reports whether the parameters describe a full table scan without filters
func (p *QueryParameters) IsUnfilteredScan() bool {
	return p.ScanMode && len(p.FilterConditions) == 0
}

// IndexKeys is the key schema of the table or one of its secondary indexes
type IndexKeys struct {
	PrimaryKeyName string `json:"primary_key_name"`
	SortKeyName    string `json:"sort_key_name,omitempty"`
}

// SecondaryIndex is a named secondary index
type SecondaryIndex struct {
	Name string `json:"name"`
	IndexKeys
}

// TableMetadata describes the key schema of a remote table
type TableMetadata struct {
	TableName        string           `json:"table_name"`
	PrimaryKeyName   string           `json:"primary_key_name"`
	SortKeyName      string           `json:"sort_key_name,omitempty"`
	SecondaryIndexes []SecondaryIndex `json:"secondary_indexes,omitempty"`
}

// IndexKeys returns the key names for the named index; "table" or "" selects the base table
func (m *TableMetadata) IndexKeys(name string) (IndexKeys, bool) {
	if name == "" || name == TableIndex {
		return IndexKeys{PrimaryKeyName: m.PrimaryKeyName, SortKeyName: m.SortKeyName}, true
	}
	for _, idx := range m.SecondaryIndexes {
		if idx.Name == name {
			return idx.IndexKeys, true
		}
	}
	return IndexKeys{}, false
}

// Item is a single document returned by the remote store
type Item = map[string]types.AttributeValue

// RemotePage is one page of a remote query or scan
type RemotePage struct {
	Items      []Item
	NextCursor Cursor
}

// Package conditions turns typed operator conditions into DynamoDB key and filter predicates.
package conditions

import (
	"fmt"
	"strings"

	"dynoquery/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/shopspring/decimal"
)

// Predicate is a built key or filter predicate. Exactly one of the key or filter builders is set.
type Predicate struct {
	Operator models.Operator
	AttrName string

	keyCond *expression.KeyConditionBuilder
	cond    *expression.ConditionBuilder
}

// IsKey reports whether the predicate belongs to a key condition
func (p Predicate) IsKey() bool {
	return p.keyCond != nil
}

// KeyCondition returns the key condition builder
func (p Predicate) KeyCondition() (expression.KeyConditionBuilder, bool) {
	if p.keyCond == nil {
		return expression.KeyConditionBuilder{}, false
	}
	return *p.keyCond, true
}

// Condition returns the filter condition builder
func (p Predicate) Condition() (expression.ConditionBuilder, bool) {
	if p.cond == nil {
		return expression.ConditionBuilder{}, false
	}
	return *p.cond, true
}

// attributeTypeCodes maps accepted attribute_type values to DynamoDB type codes
var attributeTypeCodes = map[string]expression.DynamoDBAttributeType{
	"S":                       expression.String,
	"SS":                      expression.StringSet,
	"N":                       expression.Number,
	"NS":                      expression.NumberSet,
	"B":                       expression.Binary,
	"BS":                      expression.BinarySet,
	"BOOL":                    expression.Boolean,
	"NULL":                    expression.Null,
	"L":                       expression.List,
	"M":                       expression.Map,
	string(models.StringType):  expression.String,
	string(models.NumberType):  expression.Number,
	string(models.BinaryType):  expression.Binary,
	string(models.BooleanType): expression.Boolean,
	string(models.MapType):     expression.Map,
	string(models.ListType):    expression.List,
	string(models.SetType):     expression.StringSet,
}

// Build dispatches to the key or filter builder depending on the context
func Build(attrName string, c models.AttributeCondition, isKeyContext bool) (Predicate, error) {
	if isKeyContext {
		return BuildKeyCondition(attrName, c)
	}
	return BuildFilterCondition(models.FilterCondition{AttrName: attrName, AttributeCondition: c})
}

// PartitionEquality builds the mandatory partition key equality of a key condition
func PartitionEquality(attrName, value string, attrType models.AttributeType) (Predicate, error) {
	if attrType == "" {
		attrType = models.StringType
	}
	return BuildKeyCondition(attrName, models.AttributeCondition{
		AttrType: attrType,
		Operator: models.OpEqual,
		Value:    value,
	})
}

// BuildKeyCondition builds a sort or partition key predicate. Only equality, ordering,
// between and begins_with are legal.
func BuildKeyCondition(attrName string, c models.AttributeCondition) (Predicate, error) {
	if !models.IsKeyOperator(c.Operator) {
		return Predicate{}, fmt.Errorf("%w: %q is not allowed in a key condition", models.ErrUnsupportedOperator, c.Operator)
	}
	if attrName == "" {
		return Predicate{}, fmt.Errorf("%w: key attribute name is empty", models.ErrInvalidValue)
	}

	key := expression.Key(attrName)
	var kc expression.KeyConditionBuilder

	switch c.Operator {
	case models.OpBeginsWith:
		kc = key.BeginsWith(c.Value)
	case models.OpBetween:
		lower, upper, err := bounds(c)
		if err != nil {
			return Predicate{}, err
		}
		kc = key.Between(expression.Value(lower), expression.Value(upper))
	default:
		v, err := Coerce(c.AttrType, c.Value)
		if err != nil {
			return Predicate{}, err
		}
		kc, err = keyComparison(key, c.Operator, expression.Value(v))
		if err != nil {
			return Predicate{}, err
		}
	}

	return Predicate{Operator: c.Operator, AttrName: attrName, keyCond: &kc}, nil
}

// BuildFilterCondition builds a filter predicate from the full operator set
func BuildFilterCondition(f models.FilterCondition) (Predicate, error) {
	if !models.IsFilterOperator(f.Operator) {
		return Predicate{}, fmt.Errorf("%w: %q", models.ErrUnsupportedOperator, f.Operator)
	}
	if f.AttrName == "" {
		return Predicate{}, fmt.Errorf("%w: filter attribute name is empty", models.ErrInvalidValue)
	}

	name := expression.Name(f.AttrName)
	var cond expression.ConditionBuilder

	switch f.Operator {
	case models.OpAttributeExists:
		cond = name.AttributeExists()
	case models.OpAttributeNotExists:
		cond = name.AttributeNotExists()
	case models.OpBeginsWith:
		cond = name.BeginsWith(f.Value)
	case models.OpContains:
		cond = name.Contains(f.Value)
	case models.OpAttributeType:
		code, ok := attributeTypeCodes[strings.TrimSpace(f.Value)]
		if !ok {
			return Predicate{}, fmt.Errorf("%w: unknown attribute type %q", models.ErrInvalidValue, f.Value)
		}
		cond = name.AttributeType(code)
	case models.OpBetween:
		lower, upper, err := bounds(f.AttributeCondition)
		if err != nil {
			return Predicate{}, err
		}
		cond = name.Between(expression.Value(lower), expression.Value(upper))
	case models.OpIn:
		values, err := coerceList(f.AttrType, f.Value)
		if err != nil {
			return Predicate{}, err
		}
		operands := make([]expression.OperandBuilder, 0, len(values)-1)
		for _, v := range values[1:] {
			operands = append(operands, expression.Value(v))
		}
		cond = name.In(expression.Value(values[0]), operands...)
	case models.OpSize:
		n, err := decimal.NewFromString(strings.TrimSpace(f.Value))
		if err != nil {
			return Predicate{}, fmt.Errorf("%w: size requires a number, got %q", models.ErrInvalidValue, f.Value)
		}
		op := f.SizeOperator
		if op == "" {
			op = models.OpEqual
		}
		cond, err = sizeComparison(name.Size(), op, expression.Value(Decimal{n}))
		if err != nil {
			return Predicate{}, err
		}
	default:
		v, err := Coerce(f.AttrType, f.Value)
		if err != nil {
			return Predicate{}, err
		}
		cond, err = nameComparison(name, f.Operator, expression.Value(v))
		if err != nil {
			return Predicate{}, err
		}
	}

	return Predicate{Operator: f.Operator, AttrName: f.AttrName, cond: &cond}, nil
}

func bounds(c models.AttributeCondition) (interface{}, interface{}, error) {
	lower, err := Coerce(c.AttrType, c.Value)
	if err != nil {
		return nil, nil, err
	}
	upper, err := Coerce(c.AttrType, c.Value2)
	if err != nil {
		return nil, nil, err
	}
	return lower, upper, nil
}

func keyComparison(key expression.KeyBuilder, op models.Operator, v expression.ValueBuilder) (expression.KeyConditionBuilder, error) {
	switch op {
	case models.OpEqual:
		return key.Equal(v), nil
	case models.OpGreaterThan:
		return key.GreaterThan(v), nil
	case models.OpLessThan:
		return key.LessThan(v), nil
	case models.OpLessThanEqual:
		return key.LessThanEqual(v), nil
	case models.OpGreaterThanEqual:
		return key.GreaterThanEqual(v), nil
	}
	return expression.KeyConditionBuilder{}, fmt.Errorf("%w: %q is not a comparison", models.ErrUnsupportedOperator, op)
}

func nameComparison(name expression.NameBuilder, op models.Operator, v expression.ValueBuilder) (expression.ConditionBuilder, error) {
	switch op {
	case models.OpEqual:
		return name.Equal(v), nil
	case models.OpNotEqual:
		return name.NotEqual(v), nil
	case models.OpGreaterThan:
		return name.GreaterThan(v), nil
	case models.OpLessThan:
		return name.LessThan(v), nil
	case models.OpLessThanEqual:
		return name.LessThanEqual(v), nil
	case models.OpGreaterThanEqual:
		return name.GreaterThanEqual(v), nil
	}
	return expression.ConditionBuilder{}, fmt.Errorf("%w: %q is not a comparison", models.ErrUnsupportedOperator, op)
}

func sizeComparison(size expression.SizeBuilder, op models.Operator, v expression.ValueBuilder) (expression.ConditionBuilder, error) {
	switch op {
	case models.OpEqual:
		return size.Equal(v), nil
	case models.OpNotEqual:
		return size.NotEqual(v), nil
	case models.OpGreaterThan:
		return size.GreaterThan(v), nil
	case models.OpLessThan:
		return size.LessThan(v), nil
	case models.OpLessThanEqual:
		return size.LessThanEqual(v), nil
	case models.OpGreaterThanEqual:
		return size.GreaterThanEqual(v), nil
	}
	return expression.ConditionBuilder{}, fmt.Errorf("%w: %q cannot compare a size", models.ErrUnsupportedOperator, op)
}

package cmd

import (
	"fmt"
	"strings"

	"dynoquery/models"
)

// parseFilter parses a filter flag of the form attr:op[:type[:value[:value2]]].
// The size operator carries its comparison inline, e.g. tags:size>=:number:2.
func parseFilter(raw string) (models.FilterCondition, error) {
	parts := strings.SplitN(raw, ":", 4)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return models.FilterCondition{}, fmt.Errorf("%w: filter %q must be attr:op[:type[:value]]", models.ErrInvalidValue, raw)
	}

	f := models.FilterCondition{AttrName: parts[0]}
	f.Operator = models.Operator(parts[1])
	if strings.HasPrefix(parts[1], string(models.OpSize)) {
		f.Operator = models.OpSize
		if sizeOp := strings.TrimPrefix(parts[1], string(models.OpSize)); sizeOp != "" {
			f.SizeOperator = models.Operator(sizeOp)
		}
	}
	if !models.IsFilterOperator(f.Operator) {
		return models.FilterCondition{}, fmt.Errorf("%w: %q", models.ErrUnsupportedOperator, parts[1])
	}

	f.AttrType = models.StringType
	if len(parts) > 2 && parts[2] != "" {
		f.AttrType = models.AttributeType(parts[2])
		if !isAttributeType(f.AttrType) {
			return models.FilterCondition{}, fmt.Errorf("%w: unknown attribute type %q", models.ErrInvalidValue, parts[2])
		}
	}
	if len(parts) > 3 {
		f.Value = parts[3]
	}

	switch f.Operator {
	case models.OpAttributeExists, models.OpAttributeNotExists:
		if f.Value != "" {
			return models.FilterCondition{}, fmt.Errorf("%w: %s takes no value", models.ErrInvalidValue, f.Operator)
		}
	case models.OpBetween:
		bounds := strings.SplitN(f.Value, ":", 2)
		if len(bounds) != 2 {
			return models.FilterCondition{}, fmt.Errorf("%w: between needs lower:upper", models.ErrInvalidValue)
		}
		f.Value, f.Value2 = bounds[0], bounds[1]
	}
	return f, nil
}

// keyFlags are the key condition flags of the query command
type keyFlags struct {
	partitionValue string
	partitionType  string
	sortOp         string
	sortType       string
	sortValue      string
	sortValue2     string
}

func (k keyFlags) keyCondition() (*models.KeyCondition, error) {
	kc := &models.KeyCondition{
		PartitionValue: k.partitionValue,
		PartitionType:  models.AttributeType(k.partitionType),
	}
	if !isAttributeType(kc.PartitionType) {
		return nil, fmt.Errorf("%w: unknown partition type %q", models.ErrInvalidValue, k.partitionType)
	}
	if k.sortOp == "" {
		return kc, nil
	}

	op := models.Operator(k.sortOp)
	if !models.IsKeyOperator(op) {
		return nil, fmt.Errorf("%w: %q is not allowed on a sort key", models.ErrUnsupportedOperator, k.sortOp)
	}
	sortType := models.AttributeType(k.sortType)
	if !isAttributeType(sortType) {
		return nil, fmt.Errorf("%w: unknown sort type %q", models.ErrInvalidValue, k.sortType)
	}
	if op == models.OpBetween && k.sortValue2 == "" {
		return nil, fmt.Errorf("%w: between needs --sort-value2", models.ErrInvalidValue)
	}
	kc.SortCondition = &models.AttributeCondition{
		AttrType: sortType,
		Operator: op,
		Value:    k.sortValue,
		Value2:   k.sortValue2,
	}
	return kc, nil
}

func isAttributeType(t models.AttributeType) bool {
	for _, known := range models.AttributeTypes {
		if known == t {
			return true
		}
	}
	return false
}

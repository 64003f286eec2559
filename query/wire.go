package query

import (
	"fmt"

	"dynoquery/conditions"
	"dynoquery/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// WireParams is the transport-neutral form of a query or scan request
type WireParams struct {
	Scan                      bool
	KeyConditionExpression    *string
	FilterExpression          *string
	ExpressionAttributeNames  map[string]string
	ExpressionAttributeValues map[string]types.AttributeValue
	IndexName                 *string
	Limit                     *int32
	ExclusiveStartKey         map[string]types.AttributeValue
}

// ToWireParams translates p into a remote request. A limit of zero leaves the page size to
// the remote store.
func ToWireParams(p *models.QueryParameters, limit int32) (*WireParams, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	builder := expression.NewBuilder()
	hasExpression := false

	if !p.ScanMode {
		kc, err := keyCondition(p)
		if err != nil {
			return nil, err
		}
		builder = builder.WithKeyCondition(kc)
		hasExpression = true
	}

	if len(p.FilterConditions) > 0 {
		filter, err := filterCondition(p.FilterConditions)
		if err != nil {
			return nil, err
		}
		builder = builder.WithFilter(filter)
		hasExpression = true
	}

	wire := &WireParams{Scan: p.ScanMode}

	if hasExpression {
		expr, err := builder.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build expression: %w", err)
		}
		if !p.ScanMode {
			wire.KeyConditionExpression = expr.KeyCondition()
		}
		if len(p.FilterConditions) > 0 {
			wire.FilterExpression = expr.Filter()
		}
		wire.ExpressionAttributeNames = expr.Names()
		wire.ExpressionAttributeValues = expr.Values()
	}

	if p.Index != "" && p.Index != models.TableIndex {
		wire.IndexName = aws.String(p.Index)
	}
	if limit > 0 {
		wire.Limit = aws.Int32(limit)
	}
	if len(p.PaginationCursor) > 0 {
		wire.ExclusiveStartKey = p.PaginationCursor
	}

	return wire, nil
}

// keyCondition is the partition equality ANDed with the optional sort predicate
func keyCondition(p *models.QueryParameters) (expression.KeyConditionBuilder, error) {
	kc := p.KeyCondition
	partition, err := conditions.PartitionEquality(p.PrimaryKeyName, kc.PartitionValue, kc.PartitionType)
	if err != nil {
		return expression.KeyConditionBuilder{}, err
	}
	out, _ := partition.KeyCondition()

	if kc.SortCondition != nil {
		if p.SortKeyName == "" {
			return expression.KeyConditionBuilder{}, fmt.Errorf("%w: sort condition on a key schema without sort key", models.ErrInvalidValue)
		}
		sort, err := conditions.BuildKeyCondition(p.SortKeyName, *kc.SortCondition)
		if err != nil {
			return expression.KeyConditionBuilder{}, err
		}
		sk, _ := sort.KeyCondition()
		out = out.And(sk)
	}
	return out, nil
}

// filterCondition AND-reduces the filters left to right
func filterCondition(filters []models.FilterCondition) (expression.ConditionBuilder, error) {
	var out expression.ConditionBuilder
	for i, f := range filters {
		pred, err := conditions.BuildFilterCondition(f)
		if err != nil {
			return expression.ConditionBuilder{}, fmt.Errorf("filter %d (%s): %w", i, f.AttrName, err)
		}
		cond, _ := pred.Condition()
		if i == 0 {
			out = cond
			continue
		}
		out = out.And(cond)
	}
	return out, nil
}

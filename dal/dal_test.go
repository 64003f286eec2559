package dal

import (
	"context"
	"errors"
	"testing"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockDynamoDBAPI implements DynamoDBAPI for testing
type MockDynamoDBAPI struct {
	mock.Mock
}

func (m *MockDynamoDBAPI) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ScanOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

func (m *MockDynamoDBAPI) ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ListTablesOutput), args.Error(1)
}

// DALTestSuite defines a test suite for DAL functions
type DALTestSuite struct {
	suite.Suite
	api    *MockDynamoDBAPI
	client *DynamoDBClient
	ctx    context.Context
}

// SetupTest runs before each test
func (suite *DALTestSuite) SetupTest() {
	suite.api = &MockDynamoDBAPI{}
	suite.client = NewWithAPI(suite.api, logger.NewLogger("error", "text"))
	suite.ctx = context.Background()
}

// TestExecuteQuery tests that query wire params map onto QueryInput
func (suite *DALTestSuite) TestExecuteQuery() {
	p, err := query.New(false, "pk", "sk",
		query.WithKeyCondition(&models.KeyCondition{PartitionValue: "USER#1"}),
		query.WithIndexName("gsi1"),
	)
	require.NoError(suite.T(), err)
	wire, err := query.ToWireParams(p, 10)
	require.NoError(suite.T(), err)

	next := map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: "USER#1"}}
	suite.api.On("Query", suite.ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.TableName) == "orders" &&
			aws.ToString(in.IndexName) == "gsi1" &&
			in.KeyConditionExpression != nil &&
			aws.ToInt32(in.Limit) == 10
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{{"pk": &types.AttributeValueMemberS{Value: "USER#1"}}},
		LastEvaluatedKey: next,
	}, nil)

	page, err := suite.client.Execute(suite.ctx, "orders", wire)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), page.Items, 1)
	assert.Equal(suite.T(), models.Cursor(next), page.NextCursor)
	suite.api.AssertExpectations(suite.T())
}

// TestExecuteScan tests that scans go through Scan and exhaust without a cursor
func (suite *DALTestSuite) TestExecuteScan() {
	p, err := query.New(true, "pk", "")
	require.NoError(suite.T(), err)
	wire, err := query.ToWireParams(p, 0)
	require.NoError(suite.T(), err)

	suite.api.On("Scan", suite.ctx, mock.AnythingOfType("*dynamodb.ScanInput")).Return(&dynamodb.ScanOutput{}, nil)

	page, err := suite.client.Execute(suite.ctx, "orders", wire)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), page.Items)
	assert.Nil(suite.T(), page.NextCursor)
	suite.api.AssertNotCalled(suite.T(), "Query", mock.Anything, mock.Anything)
}

// TestExecuteClassifiesErrors tests RemoteError wrapping with the service error code
func (suite *DALTestSuite) TestExecuteClassifiesErrors() {
	p, err := query.New(true, "pk", "")
	require.NoError(suite.T(), err)
	wire, err := query.ToWireParams(p, 0)
	require.NoError(suite.T(), err)

	apiErr := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "table missing"}
	suite.api.On("Scan", suite.ctx, mock.Anything).Return(nil, apiErr)

	_, err = suite.client.Execute(suite.ctx, "missing", wire)
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, models.ErrRemoteCallFailed)

	var remote *models.RemoteError
	require.True(suite.T(), errors.As(err, &remote))
	assert.Equal(suite.T(), "ResourceNotFoundException", remote.Code)
	assert.Equal(suite.T(), "Scan", remote.Operation)
}

// TestDescribeTable tests key schema extraction in declared order
func (suite *DALTestSuite) TestDescribeTable() {
	suite.api.On("DescribeTable", suite.ctx, mock.Anything).Return(&dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName: aws.String("orders"),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
				{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndexDescription{
				{IndexName: aws.String("gsi1Index"), KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("gsipk1"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("gsisk1"), KeyType: types.KeyTypeRange},
				}},
				{IndexName: aws.String("gsi2Index"), KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("gsipk2"), KeyType: types.KeyTypeHash},
				}},
			},
		},
	}, nil)

	meta, err := suite.client.DescribeTable(suite.ctx, "orders")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "pk", meta.PrimaryKeyName)
	assert.Equal(suite.T(), "sk", meta.SortKeyName)
	require.Len(suite.T(), meta.SecondaryIndexes, 2)
	assert.Equal(suite.T(), "gsi1Index", meta.SecondaryIndexes[0].Name)
	assert.Equal(suite.T(), "gsisk1", meta.SecondaryIndexes[0].SortKeyName)
	assert.Equal(suite.T(), "", meta.SecondaryIndexes[1].SortKeyName)
}

// TestListTablesFollowsPagination tests ListTables paging
func (suite *DALTestSuite) TestListTablesFollowsPagination() {
	suite.api.On("ListTables", mock.Anything, mock.MatchedBy(func(in *dynamodb.ListTablesInput) bool {
		return in.ExclusiveStartTableName == nil
	})).Return(&dynamodb.ListTablesOutput{
		TableNames:             []string{"a", "b"},
		LastEvaluatedTableName: aws.String("b"),
	}, nil).Once()
	suite.api.On("ListTables", mock.Anything, mock.MatchedBy(func(in *dynamodb.ListTablesInput) bool {
		return aws.ToString(in.ExclusiveStartTableName) == "b"
	})).Return(&dynamodb.ListTablesOutput{
		TableNames: []string{"c"},
	}, nil).Once()

	names, err := suite.client.ListTables(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"a", "b", "c"}, names)
}

// TestDALTestSuite runs the DAL test suite
func TestDALTestSuite(t *testing.T) {
	suite.Run(t, new(DALTestSuite))
}

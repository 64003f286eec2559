package dal

import (
	"context"

	"dynoquery/models"
	"dynoquery/query"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the DAL
type DynamoDBAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	ListTables(ctx context.Context, params *dynamodb.ListTablesInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

// DatabaseClientInterface defines the contract for remote table operations
type DatabaseClientInterface interface {
	// Execute runs one page of a query or scan
	Execute(ctx context.Context, tableName string, wire *query.WireParams) (*models.RemotePage, error)

	// Table metadata operations
	DescribeTable(ctx context.Context, tableName string) (*models.TableMetadata, error)
	ListTables(ctx context.Context) ([]string, error)
}

// ClientFactory opens a remote client bound to a session's region and credential profile
type ClientFactory func(ctx context.Context, session *models.Session) (DatabaseClientInterface, error)

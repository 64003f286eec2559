package dal

import (
	"context"
	"errors"
	"fmt"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

type DynamoDBClient struct {
	client DynamoDBAPI
	logger logger.Logger
}

// NewDynamoDBClient creates a DynamoDB client for a session. The session region and
// credential profile take precedence over the application config.
func NewDynamoDBClient(ctx context.Context, cfg *models.Config, session *models.Session, log logger.Logger) (*DynamoDBClient, error) {
	region := cfg.AWSRegion
	profile := cfg.AWSProfile
	if session != nil {
		if session.Region != "" {
			region = session.Region
		}
		if session.CredentialProfile != "" {
			profile = session.CredentialProfile
		}
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Use static credentials if provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"", // session token
		))
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		// Override endpoint for local DynamoDB
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	log.Infof("DynamoDB client initialized (region=%s profile=%q)", region, profile)
	return NewWithAPI(client, log), nil
}

// NewClientFactory returns a ClientFactory building DynamoDB clients from cfg
func NewClientFactory(cfg *models.Config, log logger.Logger) ClientFactory {
	return func(ctx context.Context, session *models.Session) (DatabaseClientInterface, error) {
		client, err := NewDynamoDBClient(ctx, cfg, session, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// NewWithAPI wraps an existing DynamoDB API implementation
func NewWithAPI(api DynamoDBAPI, log logger.Logger) *DynamoDBClient {
	return &DynamoDBClient{client: api, logger: log}
}

// Execute runs one page of a query or scan against tableName
func (db *DynamoDBClient) Execute(ctx context.Context, tableName string, wire *query.WireParams) (*models.RemotePage, error) {
	if wire.Scan {
		input := &dynamodb.ScanInput{
			TableName:                 aws.String(tableName),
			IndexName:                 wire.IndexName,
			FilterExpression:          wire.FilterExpression,
			ExpressionAttributeNames:  wire.ExpressionAttributeNames,
			ExpressionAttributeValues: wire.ExpressionAttributeValues,
			Limit:                     wire.Limit,
			ExclusiveStartKey:         wire.ExclusiveStartKey,
		}

		output, err := db.client.Scan(ctx, input)
		if err != nil {
			db.logger.Errorf("Failed to scan %s: %v", tableName, err)
			return nil, classify("Scan", err)
		}
		db.logger.Debugf("Scan %s returned %d items", tableName, len(output.Items))
		return &models.RemotePage{Items: output.Items, NextCursor: output.LastEvaluatedKey}, nil
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(tableName),
		IndexName:                 wire.IndexName,
		KeyConditionExpression:    wire.KeyConditionExpression,
		FilterExpression:          wire.FilterExpression,
		ExpressionAttributeNames:  wire.ExpressionAttributeNames,
		ExpressionAttributeValues: wire.ExpressionAttributeValues,
		Limit:                     wire.Limit,
		ExclusiveStartKey:         wire.ExclusiveStartKey,
	}

	output, err := db.client.Query(ctx, input)
	if err != nil {
		db.logger.Errorf("Failed to query %s: %v", tableName, err)
		return nil, classify("Query", err)
	}
	db.logger.Debugf("Query %s returned %d items", tableName, len(output.Items))
	return &models.RemotePage{Items: output.Items, NextCursor: output.LastEvaluatedKey}, nil
}

// DescribeTable returns the key schema of the table and its secondary indexes
func (db *DynamoDBClient) DescribeTable(ctx context.Context, tableName string) (*models.TableMetadata, error) {
	output, err := db.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err != nil {
		db.logger.Errorf("Failed to describe table %s: %v", tableName, err)
		return nil, classify("DescribeTable", err)
	}
	if output.Table == nil {
		return nil, &models.RemoteError{Operation: "DescribeTable", Err: fmt.Errorf("table %s has no description", tableName)}
	}
	return TableMetadataFromDescription(output.Table), nil
}

// ListTables returns every table name visible to the session
func (db *DynamoDBClient) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	paginator := dynamodb.NewListTablesPaginator(db.client, &dynamodb.ListTablesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			db.logger.Errorf("Failed to list tables: %v", err)
			return nil, classify("ListTables", err)
		}
		names = append(names, page.TableNames...)
	}
	return names, nil
}

// TableMetadataFromDescription extracts key names, keeping secondary indexes in declared order
// (global indexes first, then local)
func TableMetadataFromDescription(table *types.TableDescription) *models.TableMetadata {
	pk, sk := keyNames(table.KeySchema)
	meta := &models.TableMetadata{
		TableName:      aws.ToString(table.TableName),
		PrimaryKeyName: pk,
		SortKeyName:    sk,
	}
	for _, gsi := range table.GlobalSecondaryIndexes {
		ipk, isk := keyNames(gsi.KeySchema)
		meta.SecondaryIndexes = append(meta.SecondaryIndexes, models.SecondaryIndex{
			Name:      aws.ToString(gsi.IndexName),
			IndexKeys: models.IndexKeys{PrimaryKeyName: ipk, SortKeyName: isk},
		})
	}
	for _, lsi := range table.LocalSecondaryIndexes {
		ipk, isk := keyNames(lsi.KeySchema)
		meta.SecondaryIndexes = append(meta.SecondaryIndexes, models.SecondaryIndex{
			Name:      aws.ToString(lsi.IndexName),
			IndexKeys: models.IndexKeys{PrimaryKeyName: ipk, SortKeyName: isk},
		})
	}
	return meta
}

func keyNames(schema []types.KeySchemaElement) (pk, sk string) {
	for _, k := range schema {
		switch k.KeyType {
		case types.KeyTypeHash:
			pk = aws.ToString(k.AttributeName)
		case types.KeyTypeRange:
			sk = aws.ToString(k.AttributeName)
		}
	}
	return pk, sk
}

// classify wraps err as a RemoteError, keeping the service error code when there is one
func classify(operation string, err error) error {
	remote := &models.RemoteError{Operation: operation, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		remote.Code = apiErr.ErrorCode()
	}
	return remote
}

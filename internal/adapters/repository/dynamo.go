package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"

	"github.com/okian/sportsevents/internal/domain/model"
)

// Attribute names of the events table.
const (
	attrEventID = "event_id"
	attrMatchID = "match_id"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps events in a DynamoDB table partitioned by event_id with
// a global secondary index on match_id + timestamp.
type DynamoStore struct {
	client     DynamoAPI
	table      string
	matchIndex string
}

// NewDynamoStore creates a store over an existing table and index.
func NewDynamoStore(client DynamoAPI, table, matchIndex string) *DynamoStore {
	return &DynamoStore{client: client, table: table, matchIndex: matchIndex}
}

// NewDynamoClient builds a client from the default AWS config chain.
// A non-empty endpoint targets a local DynamoDB.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrStoreUnavailable, err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Put writes the event unconditionally.
func (s *DynamoStore) Put(ctx context.Context, e model.Event) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.EventID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return storeError("put item", err)
	}
	return nil
}

// GetByKey queries the partition for eventID and returns its newest item.
// A query works whether or not the table also carries a timestamp sort key.
func (s *DynamoStore) GetByKey(ctx context.Context, eventID string) (model.Event, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrEventID).Equal(expression.Value(eventID))).
		Build()
	if err != nil {
		return model.Event{}, fmt.Errorf("build key condition: %w", err)
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return model.Event{}, storeError("query event", err)
	}
	if len(out.Items) == 0 {
		return model.Event{}, ErrNotFound
	}
	var e model.Event
	if err := attributevalue.UnmarshalMap(out.Items[0], &e); err != nil {
		return model.Event{}, fmt.Errorf("unmarshal event %s: %w", eventID, err)
	}
	return e, nil
}

// QueryByMatch reads one page of the match index.
func (s *DynamoStore) QueryByMatch(ctx context.Context, matchID string, limit int, newestFirst bool) ([]model.Event, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrMatchID).Equal(expression.Value(matchID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		IndexName:                 aws.String(s.matchIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!newestFirst),
		Limit:                     aws.Int32(int32(min(limit, maxDynamoLimit))),
	})
	if err != nil {
		return nil, storeError("query match index", err)
	}
	events := make([]model.Event, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &events); err != nil {
		return nil, fmt.Errorf("unmarshal match events: %w", err)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// ScanAll follows LastEvaluatedKey until the table is exhausted.
func (s *DynamoStore) ScanAll(ctx context.Context) ([]model.Event, error) {
	events := []model.Event{}
	p := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, storeError("scan table", err)
		}
		var batch []model.Event
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal scanned events: %w", err)
		}
		events = append(events, batch...)
	}
	return events, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error { return nil }

// maxDynamoLimit keeps the Limit conversion to int32 in range.
const maxDynamoLimit = 1 << 30

// storeError wraps a client failure, keeping the service error code when
// the SDK exposes one.
func storeError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: dynamodb %s: %s: %w", ErrStoreUnavailable, op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%w: dynamodb %s: %w", ErrStoreUnavailable, op, err)
}

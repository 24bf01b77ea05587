// Package dynamodb implements the faucet's claim storage on an AWS DynamoDB table
// whose partition key is the string attribute "address".
package dynamodb

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gabapcia/faucet/internal/faucet"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client used by the store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type claimItem struct {
	Address     string    `dynamodbav:"address"`
	ClaimedAt   time.Time `dynamodbav:"claimed_at"`
	TxReference string    `dynamodbav:"tx_reference"`
}

type store struct {
	tableName string
	api       API
}

// New returns a store backed by the given client and table.
func New(api API, tableName string) *store {
	return &store{
		tableName: tableName,
		api:       api,
	}
}

// Connect loads the default AWS configuration (environment, shared files, IMDS)
// and returns a store for tableName. A non-empty endpoint overrides the service
// URL, e.g. for DynamoDB Local.
func Connect(ctx context.Context, tableName, region, endpoint string) (*store, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return New(client, tableName), nil
}

func addressKey(address string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"address": &types.AttributeValueMemberS{Value: address},
	}
}

// HasClaimed issues a strongly consistent GetItem projecting only the key.
func (s *store) HasClaimed(ctx context.Context, address string) (bool, error) {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name("address"))).
		Build()
	if err != nil {
		return false, fmt.Errorf("building projection: %w", err)
	}

	res, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.tableName),
		Key:                      addressKey(address),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
	}

	return len(res.Item) > 0, nil
}

// MarkClaimed puts the item on the condition attribute_not_exists(address).
// A failed condition means the address already holds a record.
func (s *store) MarkClaimed(ctx context.Context, address, txReference string) error {
	item, err := attributevalue.MarshalMap(claimItem{
		Address:     address,
		ClaimedAt:   time.Now().UTC(),
		TxReference: txReference,
	})
	if err != nil {
		return fmt.Errorf("serializing item: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("address"))).
		Build()
	if err != nil {
		return fmt.Errorf("building condition: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.tableName),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return faucet.ErrDuplicateClaim
		}

		return fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
	}

	return nil
}

// ListClaims scans the whole table, following pagination, and returns the
// records ordered by claim time.
func (s *store) ListClaims(ctx context.Context) ([]faucet.ClaimRecord, error) {
	var records []faucet.ClaimRecord

	paginator := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{
		TableName:      aws.String(s.tableName),
		ConsistentRead: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", faucet.ErrStoreUnavailable, err)
		}

		var items []claimItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshalling claim items: %w", err)
		}

		for _, item := range items {
			records = append(records, faucet.ClaimRecord(item))
		}
	}

	slices.SortFunc(records, func(a, b faucet.ClaimRecord) int {
		return cmp.Or(a.ClaimedAt.Compare(b.ClaimedAt), cmp.Compare(a.Address, b.Address))
	})

	return records, nil
}

var (
	_ faucet.ClaimStorage = new(store)
	_ faucet.ClaimLister  = new(store)
	_ API                 = new(dynamodb.Client)
)

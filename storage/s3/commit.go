package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/chromad/codes"
)

// DDBClient is the interface for the DynamoDB operations the commit store
// uses. *dynamodb.Client satisfies it.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ConflictError reports a lost checkpoint-commit race: another worker
// committed the same version first.
type ConflictError struct {
	// Version is the version number that was already taken.
	Version uint64
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("checkpoint version %d already committed", e.Version)
}

// Code implements codes.Coder.
func (e *ConflictError) Code() codes.Code {
	return codes.Aborted
}

// CommitStore publishes checkpoint pointers with atomic versioning on
// DynamoDB. Checkpoint content lives in object storage; the store only
// tracks which key is current, using conditional writes for the
// compare-and-swap that S3 itself lacks.
//
// Table schema:
//   - Partition key: base_uri (string) - logical checkpoint stream
//   - Sort key: version (number) - monotonically increasing version
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name chromad-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	client    DDBClient
	tableName string
	baseURI   string
}

// NewCommitStore creates a commit store. baseURI identifies the checkpoint
// stream, typically "s3://bucket/prefix".
func NewCommitStore(client DDBClient, tableName, baseURI string) *CommitStore {
	return &CommitStore{
		client:    client,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Commit atomically publishes key as the next checkpoint version and
// returns the version number. A ConflictError means another worker won the
// race; the caller can re-read and retry.
func (s *CommitStore) Commit(ctx context.Context, key string) (uint64, error) {
	_, current, err := s.Latest(ctx)
	if err != nil {
		return 0, err
	}

	next := current + 1

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]ddbtypes.AttributeValue{
			"base_uri":       &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
			"version":        &ddbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%d", next)},
			"checkpoint_key": &ddbtypes.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, &ConflictError{Version: next}
		}

		return 0, fmt.Errorf("commit checkpoint version: %w", err)
	}

	return next, nil
}

// Latest returns the most recently committed checkpoint key and its
// version. An empty stream yields ("", 0, nil).
func (s *CommitStore) Latest(ctx context.Context) (string, uint64, error) {
	resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":uri": &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return "", 0, fmt.Errorf("query latest checkpoint: %w", err)
	}

	if len(resp.Items) == 0 {
		return "", 0, nil
	}

	item := resp.Items[0]

	versionAttr, ok := item["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return "", 0, errors.New("invalid version attribute in commit table")
	}

	keyAttr, ok := item["checkpoint_key"].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return "", 0, errors.New("invalid checkpoint_key attribute in commit table")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return "", 0, fmt.Errorf("parse checkpoint version: %w", err)
	}

	return keyAttr.Value, version, nil
}

package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/symgraph/blobstore"
)

// HeadName is the blob name of the pointer to the latest published
// snapshot. Writes to it go through DynamoDB.
const HeadName = blobstore.HeadName

// ErrConcurrentModification is returned when another writer published a
// version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification detected")

// DDBClient is the subset of the DynamoDB API used by DDBCommitStore.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCommitStore is an S3 Store whose HEAD pointer is kept in DynamoDB.
// Writes to HEAD become conditional inserts of a new version, which gives
// concurrent publishers the compare-and-swap S3 lacks. All other blobs go
// to S3 unchanged.
//
// Table schema:
//   - Partition key: table_uri (string), the store URI
//   - Sort key: version (number), increasing per publish
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name symgraph-commits \
//	  --attribute-definitions AttributeName=table_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=table_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	*Store
	ddb       DDBClient
	tableName string
	uri       string
}

var _ blobstore.BlobStore = (*DDBCommitStore)(nil)

// Commit is one published HEAD version.
type Commit struct {
	Version  uint64
	Snapshot string
}

// NewDDBCommitStore wraps store. uri partitions the commit table so that
// several stores can share it.
func NewDDBCommitStore(store *Store, ddb DDBClient, tableName, uri string) *DDBCommitStore {
	return &DDBCommitStore{
		Store:     store,
		ddb:       ddb,
		tableName: tableName,
		uri:       uri,
	}
}

// Open serves HEAD from DynamoDB and everything else from S3.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != HeadName {
		return s.Store.Open(ctx, name)
	}
	c, err := s.Head(ctx)
	if err != nil {
		return nil, err
	}
	if c.Version == 0 {
		return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
	}
	return blobstore.NewBytesBlob([]byte(c.Snapshot)), nil
}

// Put publishes a new HEAD version when name is HeadName.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name == HeadName {
		return s.commit(ctx, string(data))
	}
	return s.Store.Put(ctx, name, data)
}

// Head returns the latest commit, or a zero Commit if none exists.
func (s *DDBCommitStore) Head(ctx context.Context) (Commit, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("table_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.uri},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Commit{}, fmt.Errorf("s3: query commit table: %w", err)
	}
	if len(resp.Items) == 0 {
		return Commit{}, nil
	}
	return parseCommit(resp.Items[0])
}

func parseCommit(item map[string]types.AttributeValue) (Commit, error) {
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Commit{}, errors.New("s3: invalid version attribute in commit table")
	}
	snapAttr, ok := item["snapshot"].(*types.AttributeValueMemberS)
	if !ok {
		return Commit{}, errors.New("s3: invalid snapshot attribute in commit table")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("s3: parse commit version: %w", err)
	}
	return Commit{Version: version, Snapshot: snapAttr.Value}, nil
}

func (s *DDBCommitStore) commit(ctx context.Context, snapshot string) error {
	head, err := s.Head(ctx)
	if err != nil {
		return err
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"table_uri": &types.AttributeValueMemberS{Value: s.uri},
			"version":   &types.AttributeValueMemberN{Value: strconv.FormatUint(head.Version+1, 10)},
			"snapshot":  &types.AttributeValueMemberS{Value: snapshot},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("s3: commit version: %w", err)
	}
	return nil
}

package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/db/tables"
	"go.uber.org/zap"
)

// DynamoAPI is the subset of the dynamodb client used by the store
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStore keeps the records in three dynamodb tables
type DynamoStore struct {
	log    *zap.Logger
	client DynamoAPI
	tables config.DynamoDBConfiguration
}

// NewDynamoStore creates a store using the default aws credential chain
func NewDynamoStore(ctx context.Context, logger *zap.Logger, cfg *config.DynamoDBConfiguration) (*DynamoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logger.Error("Could not load aws configuration", zap.Error(err))
		return nil, err
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.EndpointResolver = dynamodb.EndpointResolverFromURL(cfg.Endpoint)
		}
	})
	return NewDynamoStoreWithClient(logger, client, cfg), nil
}

// NewDynamoStoreWithClient uses the supplied client, mostly used in tests
func NewDynamoStoreWithClient(logger *zap.Logger, client DynamoAPI, cfg *config.DynamoDBConfiguration) *DynamoStore {
	return &DynamoStore{
		log:    logger,
		client: client,
		tables: *cfg,
	}
}

func (*DynamoStore) Close() {}

// EnsureUsable checks that all tables exist, tables are provisioned outside of this service
func (d *DynamoStore) EnsureUsable() error {
	for _, name := range []string{d.tables.AuthorizationCodes, d.tables.AccessTokens, d.tables.Users} {
		_, err := d.client.DescribeTable(context.Background(), &dynamodb.DescribeTableInput{
			TableName: aws.String(name),
		})
		if err != nil {
			return fmt.Errorf("dynamodb table %s is not usable: %w", name, err)
		}
	}
	return nil
}

// Auditor returns a log based auditor, dynamodb has no audit table
func (d *DynamoStore) Auditor() Auditor {
	return &logAuditor{log: d.log.Named("audit")}
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (d *DynamoStore) get(ctx context.Context, table, keyName, key string, dest interface{}) error {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            stringKey(keyName, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return err
	}
	if out.Item == nil {
		return ErrNotFound
	}
	return attributevalue.UnmarshalMap(out.Item, dest)
}

// put writes the record, a non empty uniqueKey makes the write fail if the key is already taken
func (d *DynamoStore) put(ctx context.Context, table string, record interface{}, uniqueKey string) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return err
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	}
	if uniqueKey != "" {
		input.ConditionExpression = aws.String("attribute_not_exists(#k)")
		input.ExpressionAttributeNames = map[string]string{"#k": uniqueKey}
	}
	_, err = d.client.PutItem(ctx, input)
	if err != nil && isConditionFailed(err) {
		return ErrAlreadyExists
	}
	return err
}

func (d *DynamoStore) InsertAuthorizationCode(ctx context.Context, code *tables.AuthorizationCode) error {
	rec := *code
	rec.TTL = rec.ExpiresAt / 1000
	return d.put(ctx, d.tables.AuthorizationCodes, &rec, "code")
}

func (d *DynamoStore) AuthorizationCode(ctx context.Context, code string) (*tables.AuthorizationCode, error) {
	var rec tables.AuthorizationCode
	if err := d.get(ctx, d.tables.AuthorizationCodes, "code", code, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RedeemAuthorizationCode marks the code as consumed, only one caller can ever succeed
func (d *DynamoStore) RedeemAuthorizationCode(ctx context.Context, code string, at int64) error {
	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(d.tables.AuthorizationCodes),
		Key:                      stringKey("code", code),
		UpdateExpression:         aws.String("SET redeemedAt = :at"),
		ConditionExpression:      aws.String("attribute_exists(#k) AND attribute_not_exists(redeemedAt)"),
		ExpressionAttributeNames: map[string]string{"#k": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":at": &types.AttributeValueMemberN{Value: strconv.FormatInt(at, 10)},
		},
	})
	if err == nil {
		return nil
	}
	if !isConditionFailed(err) {
		return err
	}
	if _, err := d.AuthorizationCode(ctx, code); err != nil {
		return err
	}
	return ErrAlreadyRedeemed
}

func (d *DynamoStore) InsertAccessToken(ctx context.Context, token *tables.AccessToken) error {
	rec := *token
	rec.TTL = rec.ExpiresAt / 1000
	return d.put(ctx, d.tables.AccessTokens, &rec, "token")
}

func (d *DynamoStore) AccessToken(ctx context.Context, token string) (*tables.AccessToken, error) {
	var rec tables.AccessToken
	if err := d.get(ctx, d.tables.AccessTokens, "token", token, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// PutUser inserts the user or overwrites the existing record with the same userid
func (d *DynamoStore) PutUser(ctx context.Context, user *tables.UserRecord) error {
	return d.put(ctx, d.tables.Users, user, "")
}

func (d *DynamoStore) User(ctx context.Context, userID string) (*tables.UserRecord, error) {
	var rec tables.UserRecord
	if err := d.get(ctx, d.tables.Users, "userid", userID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *DynamoStore) Users(ctx context.Context) ([]*tables.UserRecord, error) {
	users := make([]*tables.UserRecord, 0)
	p := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.tables.Users),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []*tables.UserRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		users = append(users, batch...)
	}
	return users, nil
}

// PurgeExpired removes expired codes and tokens the dynamodb TTL sweeper has not caught yet
func (d *DynamoStore) PurgeExpired(ctx context.Context, now int64) (int, int, error) {
	codes, err := d.purgeTable(ctx, d.tables.AuthorizationCodes, "code", now)
	if err != nil {
		return 0, 0, err
	}
	tokens, err := d.purgeTable(ctx, d.tables.AccessTokens, "token", now)
	if err != nil {
		return codes, 0, err
	}
	return codes, tokens, nil
}

func (d *DynamoStore) purgeTable(ctx context.Context, table, keyName string, now int64) (int, error) {
	p := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName:                aws.String(table),
		FilterExpression:         aws.String("expiresAt < :now"),
		ProjectionExpression:     aws.String("#k"),
		ExpressionAttributeNames: map[string]string{"#k": keyName},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now, 10)},
		},
	})
	removed := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return removed, err
		}
		for _, item := range page.Items {
			_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(table),
				Key:       map[string]types.AttributeValue{keyName: item[keyName]},
			})
			if err != nil {
				return removed, err
			}
			removed++
		}
	}
	d.log.Debug("purged expired records", zap.String("table", table), zap.Int("count", removed))
	return removed, nil
}

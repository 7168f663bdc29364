package db

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/eisenwinter/veluxidp/config"
	"github.com/eisenwinter/veluxidp/db/tables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockDynamo struct {
	mock.Mock
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	ret := m.Called(ctx, params)
	out, _ := ret.Get(0).(*dynamodb.GetItemOutput)
	return out, ret.Error(1)
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	ret := m.Called(ctx, params)
	out, _ := ret.Get(0).(*dynamodb.PutItemOutput)
	return out, ret.Error(1)
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	ret := m.Called(ctx, params)
	out, _ := ret.Get(0).(*dynamodb.UpdateItemOutput)
	return out, ret.Error(1)
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	ret := m.Called(ctx, params)
	out, _ := ret.Get(0).(*dynamodb.DeleteItemOutput)
	return out, ret.Error(1)
}

func (m *mockDynamo) Scan(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	ret := m.Called(ctx, params)
	out, _ := ret.Get(0).(*dynamodb.ScanOutput)
	return out, ret.Error(1)
}

func (m *mockDynamo) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	ret := m.Called(ctx, params)
	out, _ := ret.Get(0).(*dynamodb.DescribeTableOutput)
	return out, ret.Error(1)
}

func newTestDynamoStore(t *testing.T) (*DynamoStore, *mockDynamo) {
	client := &mockDynamo{}
	t.Cleanup(func() { client.AssertExpectations(t) })
	store := NewDynamoStoreWithClient(zaptest.NewLogger(t), client, &config.DynamoDBConfiguration{
		AuthorizationCodes: "codes",
		AccessTokens:       "tokens",
		Users:              "users",
	})
	return store, client
}

func TestDynamoInsertAuthorizationCodeSetsTTL(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		ttl, ok := in.Item["ttl"].(*types.AttributeValueMemberN)
		code, codeOk := in.Item["code"].(*types.AttributeValueMemberS)
		_, hasClient := in.Item["clientId"]
		return aws.ToString(in.TableName) == "codes" &&
			ok && ttl.Value == "1700000600" &&
			codeOk && code.Value == "abc" &&
			!hasClient &&
			aws.ToString(in.ConditionExpression) == "attribute_not_exists(#k)"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := store.InsertAuthorizationCode(ctx, &tables.AuthorizationCode{
		Code:        "abc",
		VeluxUserID: tables.StringOrNil("alice"),
		ExpiresAt:   1700000600000,
	})
	assert.NoError(t, err)
}

func TestDynamoInsertAuthorizationCodeDuplicate(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("PutItem", ctx, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")})

	err := store.InsertAuthorizationCode(ctx, &tables.AuthorizationCode{Code: "abc", ExpiresAt: 1})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestDynamoAuthorizationCodeNotFound(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	rec, err := store.AuthorizationCode(ctx, "missing")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoAuthorizationCodeFound(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		key, ok := in.Key["code"].(*types.AttributeValueMemberS)
		return ok && key.Value == "abc" && aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"code":        &types.AttributeValueMemberS{Value: "abc"},
		"clientId":    &types.AttributeValueMemberS{Value: "skill"},
		"redirectUri": &types.AttributeValueMemberS{Value: "https://skill.example/cb"},
		"expiresAt":   &types.AttributeValueMemberN{Value: "1700000600000"},
	}}, nil)

	rec, err := store.AuthorizationCode(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.Code)
	assert.Equal(t, "skill", tables.StringValue(rec.ClientID))
	assert.Equal(t, "https://skill.example/cb", tables.StringValue(rec.RedirectURI))
	assert.Nil(t, rec.VeluxUserID)
	assert.Nil(t, rec.RedeemedAt)
	assert.Equal(t, int64(1700000600000), rec.ExpiresAt)
}

func TestDynamoRedeemAlreadyRedeemed(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("UpdateItem", ctx, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("redeemed")})
	client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"code":       &types.AttributeValueMemberS{Value: "abc"},
		"expiresAt":  &types.AttributeValueMemberN{Value: "1700000600000"},
		"redeemedAt": &types.AttributeValueMemberN{Value: "1700000000000"},
	}}, nil)

	err := store.RedeemAuthorizationCode(ctx, "abc", 1700000000001)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
}

func TestDynamoRedeemUnknownCode(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("UpdateItem", ctx, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("missing")})
	client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	err := store.RedeemAuthorizationCode(ctx, "abc", 1700000000001)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoPutUserOverwrites(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		user, ok := in.Item["userid"].(*types.AttributeValueMemberS)
		bridge, bridgeOk := in.Item["bridge"].(*types.AttributeValueMemberS)
		return aws.ToString(in.TableName) == "users" &&
			in.ConditionExpression == nil &&
			ok && user.Value == "alice" &&
			bridgeOk && bridge.Value == "B1"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	err := store.PutUser(ctx, &tables.UserRecord{UserID: "alice", HomeID: "H1", Bridge: "B1"})
	assert.NoError(t, err)
}

func TestDynamoPurgeExpired(t *testing.T) {
	store, client := newTestDynamoStore(t)
	ctx := context.Background()
	client.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return aws.ToString(in.TableName) == "codes"
	})).Return(&dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{
		{"code": &types.AttributeValueMemberS{Value: "c1"}},
		{"code": &types.AttributeValueMemberS{Value: "c2"}},
	}}, nil)
	client.On("Scan", ctx, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return aws.ToString(in.TableName) == "tokens"
	})).Return(&dynamodb.ScanOutput{}, nil)
	client.On("DeleteItem", ctx, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return aws.ToString(in.TableName) == "codes"
	})).Return(&dynamodb.DeleteItemOutput{}, nil).Twice()

	codes, tokens, err := store.PurgeExpired(ctx, 1700000000000)
	assert.NoError(t, err)
	assert.Equal(t, 2, codes)
	assert.Equal(t, 0, tokens)
}

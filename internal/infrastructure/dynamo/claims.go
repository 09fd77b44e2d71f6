package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lostfound-api/internal/domain"
)

// ClaimRepo provides typed DynamoDB operations for the claims table.
type ClaimRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewClaimRepo(client *dynamodb.Client, tableName string) *ClaimRepo {
	return &ClaimRepo{client: client, tableName: tableName}
}

func (r *ClaimRepo) Put(ctx context.Context, c *domain.Claim) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal claim: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ClaimRepo) Get(ctx context.Context, claimID string) (*domain.Claim, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("claim_id", claimID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("claim not found: %w", domain.ErrNotFound)
	}
	var c domain.Claim
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClaimRepo) Update(ctx context.Context, claimID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("claim_id", claimID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *ClaimRepo) HardDelete(ctx context.Context, claimID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("claim_id", claimID),
	})
	return err
}

// ListByItem queries the item_id GSI for every claim on one item.
func (r *ClaimRepo) ListByItem(ctx context.Context, itemID string) ([]domain.Claim, error) {
	return r.queryGSI(ctx, "item_id-index", "item_id", itemID)
}

// ListByClaimer queries the claimer_id GSI for every claim by one user.
func (r *ClaimRepo) ListByClaimer(ctx context.Context, claimerID string) ([]domain.Claim, error) {
	return r.queryGSI(ctx, "claimer_id-index", "claimer_id", claimerID)
}

func (r *ClaimRepo) queryGSI(ctx context.Context, index, attr, value string) ([]domain.Claim, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#a = :v"),
		ExpressionAttributeNames: map[string]string{
			"#a": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, err
	}
	var claims []domain.Claim
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// MarkRejected sets a claim to rejected with the given response time.
// Used by the cascade when a sibling claim wins.
func (r *ClaimRepo) MarkRejected(ctx context.Context, claimID string, respondedAt time.Time) error {
	return r.Update(ctx, claimID, map[string]interface{}{
		fieldStatus:      domain.ClaimStatusRejected,
		fieldRespondedAt: respondedAt.UTC().Format(time.RFC3339),
	})
}

package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lostfound-api/internal/domain"
)

// ItemRepo provides typed DynamoDB operations for the items table.
type ItemRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewItemRepo(client *dynamodb.Client, tableName string) *ItemRepo {
	return &ItemRepo{client: client, tableName: tableName}
}

func (r *ItemRepo) Put(ctx context.Context, it *domain.Item) error {
	item, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ItemRepo) Get(ctx context.Context, itemID string) (*domain.Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("item_id", itemID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("item not found: %w", domain.ErrNotFound)
	}
	var it domain.Item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepo) Update(ctx context.Context, itemID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(withTimestamp(updates))
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("item_id", itemID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// UpdateStatusIf sets the item's status to newStatus only while it still equals
// expectedStatus. A ConditionalCheckFailedException maps to domain.ErrConflict
// so racing status transitions lose deterministically instead of double-applying.
func (r *ItemRepo) UpdateStatusIf(ctx context.Context, itemID, expectedStatus, newStatus string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("item_id", itemID),
		UpdateExpression:    aws.String("SET #s = :new, #u = :now"),
		ConditionExpression: aws.String("#s = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
			"#u": fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
			":now":      &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("item status changed concurrently: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *ItemRepo) HardDelete(ctx context.Context, itemID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("item_id", itemID),
	})
	return err
}

// ListByUser queries the user_id GSI for all items reported by one user.
func (r *ItemRepo) ListByUser(ctx context.Context, userID string) ([]domain.Item, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var items []domain.Item
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Scan returns items matching the filter. Equality constraints, the location
// substring, and the date range are pushed into the filter expression; free-text
// search and ordering stay in the service layer.
func (r *ItemRepo) Scan(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	expr := ""
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	and := func(clause string) {
		if expr != "" {
			expr += " AND "
		}
		expr += clause
	}

	if f.Type != "" {
		and("#t = :type")
		names["#t"] = "type"
		values[":type"] = &types.AttributeValueMemberS{Value: f.Type}
	}
	if f.Status != "" {
		and("#s = :status")
		names["#s"] = fieldStatus
		values[":status"] = &types.AttributeValueMemberS{Value: f.Status}
	}
	if f.Category != "" {
		and("category = :category")
		values[":category"] = &types.AttributeValueMemberS{Value: f.Category}
	}
	if f.Location != "" {
		and("contains(#l, :location)")
		names["#l"] = "location"
		values[":location"] = &types.AttributeValueMemberS{Value: f.Location}
	}
	if f.DateFrom != nil {
		and("date_lost_found >= :from")
		values[":from"] = &types.AttributeValueMemberS{Value: f.DateFrom.UTC().Format(time.RFC3339)}
	}
	if f.DateTo != nil {
		and("date_lost_found <= :to")
		values[":to"] = &types.AttributeValueMemberS{Value: f.DateTo.UTC().Format(time.RFC3339)}
	}

	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	if expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeValues = values
		if len(names) > 0 {
			input.ExpressionAttributeNames = names
		}
	}

	var items []domain.Item
	p := dynamodb.NewScanPaginator(r.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Item
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		items = append(items, batch...)
	}
	return items, nil
}

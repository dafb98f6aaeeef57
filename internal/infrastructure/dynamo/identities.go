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
	"github.com/workforce-verify/internal/domain"
)

// API is the subset of *dynamodb.Client the repos use.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// IdentityRepo is the identity directory: one item per user keyed by user_id,
// with an email-index GSI and a metadata map attribute. Each email is also
// claimed by a separate item keyed "email#<address>" that names its owner.
type IdentityRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

// emailClaim reserves an address for one identity.
type emailClaim struct {
	Key     string `dynamodbav:"user_id"`
	OwnerID string `dynamodbav:"owner_id"`
}

func emailClaimKey(email string) string {
	return emailClaimPrefix + email
}

func NewIdentityRepo(client API, tableName string) *IdentityRepo {
	return &IdentityRepo{client: client, tableName: tableName, now: time.Now}
}

// Put creates a new identity and claims its email in one transaction. It fails
// with domain.ErrConflict if the id or the email is already taken.
// A nil metadata bag is stored as an empty map so later nested writes have a parent.
func (r *IdentityRepo) Put(ctx context.Context, u *domain.UserIdentity) error {
	if u.Metadata == nil {
		u.Metadata = domain.Metadata{}
	}
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	claim, err := attributevalue.MarshalMap(emailClaim{Key: emailClaimKey(u.Email), OwnerID: u.UserID})
	if err != nil {
		return fmt.Errorf("marshal email claim: %w", err)
	}
	absent := aws.String("attribute_not_exists(#id)")
	names := map[string]string{"#id": fieldUserID}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: item, ConditionExpression: absent, ExpressionAttributeNames: names}},
			{Put: &types.Put{TableName: aws.String(r.tableName), Item: claim, ConditionExpression: absent, ExpressionAttributeNames: names}},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("identity %s or email %s already registered: %w", u.UserID, u.Email, domain.ErrConflict)
	}
	return err
}

// Delete removes an identity together with its email claim. The claim is only
// removed while it still names userID.
func (r *IdentityRepo) Delete(ctx context.Context, userID, email string) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{TableName: aws.String(r.tableName), Key: strKey(fieldUserID, userID)}},
			{Delete: &types.Delete{
				TableName:                 aws.String(r.tableName),
				Key:                       strKey(fieldUserID, emailClaimKey(email)),
				ConditionExpression:       aws.String("#o = :id"),
				ExpressionAttributeNames:  map[string]string{"#o": fieldOwnerID},
				ExpressionAttributeValues: map[string]types.AttributeValue{":id": &types.AttributeValueMemberS{Value: userID}},
			}},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("email %s is claimed by another identity: %w", email, domain.ErrConflict)
	}
	return err
}

func (r *IdentityRepo) Get(ctx context.Context, userID string) (*domain.UserIdentity, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil || out.Item[fieldOwnerID] != nil {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	return unmarshalIdentity(out.Item)
}

// GetByEmail resolves the owning user id and then reads the identity with a
// consistent read, so the returned metadata reflects every committed write.
// Emails are stored lower-cased.
func (r *IdentityRepo) GetByEmail(ctx context.Context, email string) (*domain.UserIdentity, error) {
	userID, err := r.resolveEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, userID)
}

// resolveEmail reads the email claim. Identities written without a claim are
// found through the email-index GSI, which is only trusted for the id.
func (r *IdentityRepo) resolveEmail(ctx context.Context, email string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, emailClaimKey(email)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if out.Item != nil {
		var c emailClaim
		if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
			return "", fmt.Errorf("unmarshal email claim: %w", err)
		}
		if c.OwnerID != "" {
			return c.OwnerID, nil
		}
	}

	q, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexEmail),
		KeyConditionExpression:    aws.String("#a = :v"),
		ProjectionExpression:      aws.String("#id"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail, "#id": fieldUserID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return "", err
	}
	if len(q.Items) == 0 {
		return "", fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	var key struct {
		UserID string `dynamodbav:"user_id"`
	}
	if err := attributevalue.UnmarshalMap(q.Items[0], &key); err != nil {
		return "", fmt.Errorf("unmarshal index key: %w", err)
	}
	return key.UserID, nil
}

// MergeMetadata writes each key of patch into the identity's metadata map and
// leaves every other key untouched. It never replaces the whole bag.
func (r *IdentityRepo) MergeMetadata(ctx context.Context, userID string, patch domain.Metadata) error {
	if len(patch) == 0 {
		return nil
	}
	updates := make(map[string]interface{}, len(patch)+1)
	for k, v := range patch {
		updates[metadataPath(k)] = v
	}
	updates[fieldUpdatedAt] = r.now().UTC().Format(time.RFC3339)
	return r.update(ctx, userID, updates)
}

// MarkEmailConfirmed flips the metadata verified flag and sets the durable
// email_confirmed_at marker. The marker keeps its first value on repeat calls.
func (r *IdentityRepo) MarkEmailConfirmed(ctx context.Context, userID string, at time.Time) error {
	ts := at.UTC().Format(time.RFC3339Nano)
	return r.update(ctx, userID, map[string]interface{}{
		metadataPath(domain.MetaEmailVerified):         true,
		metadataPath(domain.MetaVerificationCompleted): ts,
		fieldEmailConfirmedAt:                          ifNotExists{value: ts},
		fieldUpdatedAt:                                 r.now().UTC().Format(time.RFC3339),
	})
}

func (r *IdentityRepo) update(ctx context.Context, userID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	const idName = "#pk"
	ue.Names[idName] = fieldUserID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + idName + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("identity %s: %w", userID, domain.ErrNotFound)
	}
	return err
}

func unmarshalIdentity(item map[string]types.AttributeValue) (*domain.UserIdentity, error) {
	var u domain.UserIdentity
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal identity: %w", err)
	}
	if u.Metadata == nil {
		u.Metadata = domain.Metadata{}
	}
	return &u, nil
}

// isConditionFailed reports a failed condition on a single write or on any
// item of a cancelled transaction.
func isConditionFailed(err error) bool {
	if err == nil {
		return false
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lPotatoUwUl/discordbot-valory/internal/logger"
	"github.com/lPotatoUwUl/discordbot-valory/pkg/bottypes"
)

// DynamoStore persists user records in a DynamoDB table keyed on ExternalID.
// Conversation appends use list_append so concurrent relays for the same user
// never clobber each other.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// DynamoConfig holds connection settings for the DynamoDB-backed store.
type DynamoConfig struct {
	Table    string
	Region   string
	Endpoint string // Non-empty for a local DynamoDB; uses static dummy credentials
}

// NewDynamoStore connects to DynamoDB and ensures the users table exists.
func NewDynamoStore(ctx context.Context, cfg DynamoConfig) (*DynamoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(_, _ string, _ ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: cfg.Endpoint}, nil
		})
		opts = append(opts,
			awsconfig.WithEndpointResolverWithOptions(resolver),
			awsconfig.WithCredentialsProvider(credentials.StaticCredentialsProvider{
				Value: aws.Credentials{
					AccessKeyID: "dummy", SecretAccessKey: "dummy", SessionToken: "dummy",
				},
			}),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s := &DynamoStore{
		client: dynamodb.NewFromConfig(awsCfg),
		table:  cfg.Table,
	}

	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// ensureTable creates the users table if it does not exist yet.
func (s *DynamoStore) ensureTable(ctx context.Context) error {
	_, err := s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(s.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("ExternalID"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("ExternalID"),
				KeyType:       types.KeyTypeHash,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}

	logger.Info("created user table", "table", s.table)
	return nil
}

// FindByExternalID looks up a record by external ID.
func (s *DynamoStore) FindByExternalID(ctx context.Context, externalID string) (*bottypes.UserRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"ExternalID": &types.AttributeValueMemberS{Value: externalID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query user %s: %w", externalID, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	return unmarshalUser(out.Item)
}

// Insert stores a new record. The condition expression makes the external ID
// uniqueness check and the write a single atomic operation.
func (s *DynamoStore) Insert(ctx context.Context, record *bottypes.UserRecord) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                marshalUser(record),
		ConditionExpression: aws.String("attribute_not_exists(ExternalID)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user %s: %w", record.ExternalID, err)
	}
	return nil
}

// AppendConversation appends one entry to the record's history server-side.
func (s *DynamoStore) AppendConversation(ctx context.Context, externalID string, entry bottypes.ConversationEntry) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"ExternalID": &types.AttributeValueMemberS{Value: externalID},
		},
		UpdateExpression:    aws.String("SET Conversations = list_append(if_not_exists(Conversations, :empty), :entry)"),
		ConditionExpression: aws.String("attribute_exists(ExternalID)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":entry": &types.AttributeValueMemberL{
				Value: []types.AttributeValue{marshalEntry(entry)},
			},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to append conversation for user %s: %w", externalID, err)
	}
	return nil
}

func marshalUser(record *bottypes.UserRecord) map[string]types.AttributeValue {
	conversations := make([]types.AttributeValue, 0, len(record.Conversations))
	for _, entry := range record.Conversations {
		conversations = append(conversations, marshalEntry(entry))
	}

	return map[string]types.AttributeValue{
		"ID":            &types.AttributeValueMemberS{Value: record.ID},
		"ExternalID":    &types.AttributeValueMemberS{Value: record.ExternalID},
		"Nickname":      &types.AttributeValueMemberS{Value: record.Nickname},
		"Conversations": &types.AttributeValueMemberL{Value: conversations},
	}
}

func marshalEntry(entry bottypes.ConversationEntry) types.AttributeValue {
	return &types.AttributeValueMemberM{
		Value: map[string]types.AttributeValue{
			"Prompt":    &types.AttributeValueMemberS{Value: entry.Prompt},
			"Response":  &types.AttributeValueMemberS{Value: entry.Response},
			"Timestamp": &types.AttributeValueMemberN{Value: strconv.FormatInt(entry.Timestamp, 10)},
		},
	}
}

func unmarshalUser(item map[string]types.AttributeValue) (*bottypes.UserRecord, error) {
	record := &bottypes.UserRecord{
		ID:         stringAttr(item, "ID"),
		ExternalID: stringAttr(item, "ExternalID"),
		Nickname:   stringAttr(item, "Nickname"),
	}
	if record.ExternalID == "" {
		return nil, fmt.Errorf("stored user item is missing ExternalID")
	}

	list, ok := item["Conversations"].(*types.AttributeValueMemberL)
	if !ok {
		return record, nil
	}

	record.Conversations = make([]bottypes.ConversationEntry, 0, len(list.Value))
	for _, raw := range list.Value {
		entryMap, ok := raw.(*types.AttributeValueMemberM)
		if !ok {
			continue
		}
		entry := bottypes.ConversationEntry{
			Prompt:   stringAttr(entryMap.Value, "Prompt"),
			Response: stringAttr(entryMap.Value, "Response"),
		}
		if n, ok := entryMap.Value["Timestamp"].(*types.AttributeValueMemberN); ok {
			ts, err := strconv.ParseInt(n.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("stored conversation has malformed timestamp %q: %w", n.Value, err)
			}
			entry.Timestamp = ts
		}
		record.Conversations = append(record.Conversations, entry)
	}

	return record, nil
}

func stringAttr(item map[string]types.AttributeValue, key string) string {
	if attr, ok := item[key].(*types.AttributeValueMemberS); ok {
		return attr.Value
	}
	return ""
}

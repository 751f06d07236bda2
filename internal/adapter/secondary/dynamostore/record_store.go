package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// API is the subset of the DynamoDB client used by RecordStore.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

type recordItem struct {
	Status        string `dynamodbav:"status"`
	TransactionID string `dynamodbav:"transactionId"`
	PaidAt        string `dynamodbav:"paidAt"`
	PaymentMethod string `dynamodbav:"paymentMethod"`
	BasketID      string `dynamodbav:"basketId"`
	Email         string `dynamodbav:"email"`
}

// RecordStore implements secondary.RecordStore on a single DynamoDB table.
//
// The table is keyed by the record key attribute alone, or, when a partition
// attribute is configured, by (partition, key) where the partition is
// derived from the contact address.
type RecordStore struct {
	api          API
	table        string
	keyAttr      string
	partAttr     string
	fieldIndexes map[string]string
	logger       *zap.Logger
}

// NewRecordStore creates a record store over the table named cfg.StoreRoot.
func NewRecordStore(api API, cfg *config.Config, logger *zap.Logger) secondary.RecordStore {
	return &RecordStore{
		api:          api,
		table:        cfg.StoreRoot,
		keyAttr:      cfg.DynamoKeyAttribute,
		partAttr:     cfg.DynamoPartitionAttribute,
		fieldIndexes: cfg.DynamoFieldIndexes,
		logger:       logger.Named("dynamodb-record-store"),
	}
}

// Name identifies the backend.
func (s *RecordStore) Name() string {
	return "dynamodb"
}

// Get reads the item addressed by the lookup. On a partitioned table a
// lookup without a contact address cannot be addressed and is not found.
func (s *RecordStore) Get(ctx context.Context, lookup entity.Lookup) (*entity.Record, error) {
	partition := lookup.Partition()
	if s.partAttr != "" && partition == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, lookup.Key)
	}

	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(partition, lookup.Key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s from dynamodb: %w", lookup.Key, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, lookup.Key)
	}
	return s.toRecord(out.Item)
}

// QueryByField returns the first item whose field equals value, using a
// secondary index when one is configured for field and a filtered scan
// otherwise.
func (s *RecordStore) QueryByField(ctx context.Context, field, value string) (*entity.Record, error) {
	names := map[string]string{"#f": field}
	values := map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}}

	if index, ok := s.fieldIndexes[field]; ok {
		paginator := dynamodb.NewQueryPaginator(s.api, &dynamodb.QueryInput{
			TableName:                 aws.String(s.table),
			IndexName:                 aws.String(index),
			KeyConditionExpression:    aws.String("#f = :v"),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("querying index %s: %w", index, err)
			}
			if len(page.Items) > 0 {
				return s.toRecord(page.Items[0])
			}
		}
		return nil, fmt.Errorf("%w: %s=%s", domain.ErrRecordNotFound, field, value)
	}

	s.logger.Debug("no index for field, scanning table", zap.String("field", field))

	var found *entity.Record
	err := s.scan(ctx, names, values, func(item map[string]types.AttributeValue) (bool, error) {
		rec, err := s.toRecord(item)
		if err != nil {
			return false, err
		}
		found = rec
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s=%s", domain.ErrRecordNotFound, field, value)
	}
	return found, nil
}

// ScanAll returns every item stored under key, across all partitions.
func (s *RecordStore) ScanAll(ctx context.Context, key string) ([]*entity.Record, error) {
	names := map[string]string{"#f": s.keyAttr}
	values := map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: key}}

	var records []*entity.Record
	err := s.scan(ctx, names, values, func(item map[string]types.AttributeValue) (bool, error) {
		rec, err := s.toRecord(item)
		if err != nil {
			return false, err
		}
		records = append(records, rec)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("table scan finished",
		zap.String("record_key", key),
		zap.Int("matches", len(records)),
	)
	return records, nil
}

// Update writes the payment fields with one conditional UpdateItem, so a
// missing item is never created.
func (s *RecordStore) Update(ctx context.Context, ref entity.RecordRef, update entity.PaymentUpdate) error {
	fields := update.Fields()
	attrs := make([]string, 0, len(fields))
	for k := range fields {
		attrs = append(attrs, k)
	}
	sort.Strings(attrs)

	names := map[string]string{"#k": s.keyAttr}
	values := make(map[string]types.AttributeValue, len(attrs))
	sets := make([]string, 0, len(attrs))
	for i, attr := range attrs {
		n, v := "#f"+strconv.Itoa(i), ":v"+strconv.Itoa(i)
		names[n] = attr
		values[v] = &types.AttributeValueMemberS{Value: fields[attr]}
		sets = append(sets, n+" = "+v)
	}

	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(ref.Partition, ref.Key),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})

	var conditionFailed *types.ConditionalCheckFailedException
	if errors.As(err, &conditionFailed) {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, ref.Key)
	}
	if err != nil {
		return fmt.Errorf("updating %s in dynamodb: %w", ref.Key, err)
	}
	return nil
}

// scan pages through the table with the filter "#f = :v" until fn reports done.
func (s *RecordStore) scan(
	ctx context.Context,
	names map[string]string,
	values map[string]types.AttributeValue,
	fn func(item map[string]types.AttributeValue) (bool, error),
) error {
	paginator := dynamodb.NewScanPaginator(s.api, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          aws.String("#f = :v"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("scanning table %s: %w", s.table, err)
		}
		for _, item := range page.Items {
			done, err := fn(item)
			if err != nil || done {
				return err
			}
		}
	}
	return nil
}

func (s *RecordStore) key(partition, key string) map[string]types.AttributeValue {
	k := map[string]types.AttributeValue{
		s.keyAttr: &types.AttributeValueMemberS{Value: key},
	}
	if s.partAttr != "" {
		k[s.partAttr] = &types.AttributeValueMemberS{Value: partition}
	}
	return k
}

func (s *RecordStore) toRecord(item map[string]types.AttributeValue) (*entity.Record, error) {
	var ri recordItem
	if err := attributevalue.UnmarshalMap(item, &ri); err != nil {
		return nil, fmt.Errorf("decoding dynamodb item: %w", err)
	}

	key := stringAttr(item, s.keyAttr)
	partition := ""
	if s.partAttr != "" {
		partition = stringAttr(item, s.partAttr)
	}

	path := key
	if partition != "" {
		path = partition + "/" + key
	}

	rec := &entity.Record{
		Ref:            entity.RecordRef{Partition: partition, Key: key, Path: path},
		Key:            key,
		Status:         entity.RecordStatus(ri.Status),
		TransactionRef: ri.TransactionID,
		PaymentMethod:  ri.PaymentMethod,
		BasketID:       ri.BasketID,
		ContactAddress: ri.Email,
	}
	if rec.Status == "" {
		rec.Status = entity.RecordStatusUnpaid
	}
	if ri.PaidAt != "" {
		if t, err := time.Parse(time.RFC3339, ri.PaidAt); err == nil {
			rec.PaidAt = t
		}
	}
	return rec, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

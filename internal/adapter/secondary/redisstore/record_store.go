package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/domain"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

const pathSeparator = "/"

// Hash fields of a stored record.
const (
	fieldStatus        = "status"
	fieldTransactionID = "transactionId"
	fieldPaidAt        = "paidAt"
	fieldPaymentMethod = "paymentMethod"
	fieldBasketID      = "basketId"
	fieldEmail         = "email"
)

// updateIfExists applies HSET only to an existing hash so a write never
// creates a record.
var updateIfExists = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

// RecordStore implements secondary.RecordStore on Redis hashes addressed by
// hierarchical paths:
//
//	<root>/<partition>/<key>   records grouped by contact address
//	<root>/<key>               records without a partition
//
// The partition is derived from the contact address, see entity.PartitionFor.
type RecordStore struct {
	client    redis.UniversalClient
	root      string
	scanCount int64
	logger    *zap.Logger
}

// NewRecordStore creates a path-addressed record store rooted at root.
func NewRecordStore(client redis.UniversalClient, root string, logger *zap.Logger) secondary.RecordStore {
	return &RecordStore{
		client:    client,
		root:      strings.Trim(root, pathSeparator),
		scanCount: 200,
		logger:    logger.Named("redis-record-store"),
	}
}

// Name identifies the backend.
func (s *RecordStore) Name() string {
	return "redis"
}

// Get reads the record at <root>/<partition>/<key> when a contact address is
// known, then at <root>/<key>.
func (s *RecordStore) Get(ctx context.Context, lookup entity.Lookup) (*entity.Record, error) {
	paths := make([]string, 0, 2)
	if lookup.ContactAddress != "" {
		paths = append(paths, s.path(lookup.Partition(), lookup.Key))
	}
	paths = append(paths, s.path("", lookup.Key))

	for _, p := range paths {
		rec, err := s.load(ctx, p)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, lookup.Key)
}

// QueryByField returns the first record under root whose hash field equals value.
func (s *RecordStore) QueryByField(ctx context.Context, field, value string) (*entity.Record, error) {
	var found *entity.Record

	err := s.scan(ctx, s.root+pathSeparator+"*", func(key string) (bool, error) {
		got, err := s.client.HGet(ctx, key, field).Result()
		if errors.Is(err, redis.Nil) || isWrongType(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("reading field %q of %s: %w", field, key, err)
		}
		if got != value {
			return false, nil
		}
		rec, err := s.load(ctx, key)
		if errors.Is(err, domain.ErrRecordNotFound) {
			return false, nil
		}
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

// ScanAll returns every record stored as <root>/<any partition>/<key>.
func (s *RecordStore) ScanAll(ctx context.Context, key string) ([]*entity.Record, error) {
	pattern := s.root + pathSeparator + "*" + pathSeparator + escapeGlob(key)

	var records []*entity.Record
	err := s.scan(ctx, pattern, func(path string) (bool, error) {
		// '*' also matches separators, so nested paths are filtered here.
		if strings.Count(strings.TrimPrefix(path, s.root+pathSeparator), pathSeparator) != 1 {
			return false, nil
		}
		rec, err := s.load(ctx, path)
		if errors.Is(err, domain.ErrRecordNotFound) || isWrongType(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		records = append(records, rec)
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("partition scan finished",
		zap.String("record_key", key),
		zap.Int("matches", len(records)),
	)
	return records, nil
}

// Update writes the payment fields with a single HSET on the existing hash.
func (s *RecordStore) Update(ctx context.Context, ref entity.RecordRef, update entity.PaymentUpdate) error {
	if ref.Path == "" {
		return fmt.Errorf("record reference has no path")
	}

	fields := update.Fields()
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	updated, err := updateIfExists.Run(ctx, s.client, []string{ref.Path}, args...).Int()
	if err != nil {
		return fmt.Errorf("updating %s in redis: %w", ref.Path, err)
	}
	if updated == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, ref.Path)
	}
	return nil
}

func (s *RecordStore) load(ctx context.Context, path string) (*entity.Record, error) {
	values, err := s.client.HGetAll(ctx, path).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s from redis: %w", path, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, path)
	}
	return s.toRecord(path, values), nil
}

func (s *RecordStore) toRecord(path string, values map[string]string) *entity.Record {
	rel := strings.TrimPrefix(path, s.root+pathSeparator)
	partition, key, ok := strings.Cut(rel, pathSeparator)
	if !ok {
		partition, key = "", rel
	}

	rec := &entity.Record{
		Ref:            entity.RecordRef{Partition: partition, Key: key, Path: path},
		Key:            key,
		Status:         entity.RecordStatus(values[fieldStatus]),
		TransactionRef: values[fieldTransactionID],
		PaymentMethod:  values[fieldPaymentMethod],
		BasketID:       values[fieldBasketID],
		ContactAddress: values[fieldEmail],
	}
	if rec.Status == "" {
		rec.Status = entity.RecordStatusUnpaid
	}
	if v := values[fieldPaidAt]; v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			rec.PaidAt = t
		}
	}
	return rec
}

func (s *RecordStore) path(partition, key string) string {
	if partition == "" {
		return s.root + pathSeparator + key
	}
	return s.root + pathSeparator + partition + pathSeparator + key
}

// scan walks every key matching pattern until fn reports done. On a cluster
// client every master is scanned.
func (s *RecordStore) scan(ctx context.Context, pattern string, fn func(key string) (bool, error)) error {
	walk := func(ctx context.Context, c redis.Cmdable) (bool, error) {
		iter := c.Scan(ctx, 0, pattern, s.scanCount).Iterator()
		for iter.Next(ctx) {
			done, err := fn(iter.Val())
			if err != nil || done {
				return done, err
			}
		}
		if err := iter.Err(); err != nil {
			return false, fmt.Errorf("scanning %q: %w", pattern, err)
		}
		return false, nil
	}

	cluster, ok := s.client.(*redis.ClusterClient)
	if !ok {
		_, err := walk(ctx, s.client)
		return err
	}

	// Masters are walked concurrently; fn is not.
	var mu sync.Mutex
	inner := fn
	fn = func(key string) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		return inner(key)
	}

	errDone := errors.New("scan done")
	err := cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
		done, err := walk(ctx, node)
		if err != nil {
			return err
		}
		if done {
			return errDone
		}
		return nil
	})
	if errors.Is(err, errDone) {
		return nil
	}
	return err
}

// isWrongType reports a key that is not a hash, also when wrapped.
func isWrongType(err error) bool {
	return err != nil && strings.Contains(err.Error(), "WRONGTYPE")
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

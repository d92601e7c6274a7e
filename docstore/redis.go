package docstore

import (
	"context"
	"errors"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

var _ Store = (*RedisStore)(nil)

const defaultKeyPrefix = "entityrepo:"

// replaceScript writes the field only when it already exists.
//
//nolint:gochecknoglobals // scripts are loaded once per process
var replaceScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
  redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
  return 1
end
return 0
`)

// deleteScript removes the given fields and returns the ones that existed.
//
//nolint:gochecknoglobals // scripts are loaded once per process
var deleteScript = redis.NewScript(`
local removed = {}
for _, id in ipairs(ARGV) do
  if redis.call('HDEL', KEYS[1], id) == 1 then
    table.insert(removed, id)
  end
end
return removed
`)

// RedisStore keeps each collection in one Redis hash: field = id, value = JSON document.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the prefix of collection keys. Default is "entityrepo:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

func NewRedisStore(client redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + collection
}

func (s *RedisStore) Insert(ctx context.Context, collection, id string, doc []byte) (bool, error) {
	ok, err := s.client.HSetNX(ctx, s.key(collection), id, doc).Result()
	if err != nil {
		return false, s.wrap(err, collection)
	}
	return ok, nil
}

func (s *RedisStore) Replace(ctx context.Context, collection, id string, doc []byte) (bool, error) {
	n, err := replaceScript.Run(ctx, s.client, []string{s.key(collection)}, id, doc).Int()
	if err != nil {
		return false, s.wrap(err, collection)
	}
	return n == 1, nil
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) ([]byte, bool, error) {
	doc, err := s.client.HGet(ctx, s.key(collection), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, s.wrap(err, collection)
	}
	return doc, true, nil
}

func (s *RedisStore) GetMany(ctx context.Context, collection string, ids []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	vals, err := s.client.HMGet(ctx, s.key(collection), ids...).Result()
	if err != nil {
		return nil, s.wrap(err, collection)
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[ids[i]] = []byte(str)
		}
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, collection string, ids ...string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	removed, err := deleteScript.Run(ctx, s.client, []string{s.key(collection)}, lo.ToAnySlice(ids)...).StringSlice()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, s.wrap(err, collection)
	}
	return removed, nil
}

func (s *RedisStore) Scan(ctx context.Context, collection string) (map[string][]byte, error) {
	all, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, s.wrap(err, collection)
	}
	out := make(map[string][]byte, len(all))
	for id, doc := range all {
		out[id] = []byte(doc)
	}
	return out, nil
}

func (s *RedisStore) wrap(err error, collection string) error {
	return errx.Wrap(err, errx.WithDetails(errx.D{"collection": collection, "key": s.key(collection)}))
}

package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/cinekit/core"
)

// RedisStore 是 Redis 实现的 Store + InteractionStore。
// 生产环境常用，支持持久化、集群、哨兵等。
//
// 数据布局：
//   - KV（快照等）：普通 string key
//   - 交互行：hash，key = {prefix}:row:{userID}，field = itemID，value = strength
//   - 用户集合：set，key = {prefix}:users
//
// HSET 天然满足同一 (user, item) 的 last-write-wins 语义。
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, prefix: "cinekit"}, nil
}

func (r *RedisStore) Name() string { return "redis" }

var (
	_ core.Store            = (*RedisStore)(nil)
	_ core.InteractionStore = (*RedisStore)(nil)
)

func (r *RedisStore) rowKey(userID string) string {
	return r.prefix + ":row:" + userID
}

func (r *RedisStore) usersKey() string {
	return r.prefix + ":users"
}

// ========== core.Store ==========

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return make(map[string][]byte), nil
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for i, k := range keys {
		if vals[i] != nil {
			if s, ok := vals[i].(string); ok {
				result[k] = []byte(s)
			}
		}
	}
	return result, nil
}

func (r *RedisStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	pipe := r.client.Pipeline()
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}

	for k, v := range kvs {
		pipe.Set(ctx, k, v, expiration)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// ========== core.InteractionStore ==========

func (r *RedisStore) Append(ctx context.Context, userID, itemID string, strength float64) error {
	if userID == "" || itemID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInternalError,
			"store: empty user or item id")
	}

	pipe := r.client.Pipeline()
	pipe.HSet(ctx, r.rowKey(userID), itemID, strconv.FormatFloat(strength, 'g', -1, 64))
	pipe.SAdd(ctx, r.usersKey(), userID)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Row(ctx context.Context, userID string) (map[string]float64, error) {
	vals, err := r.client.HGetAll(ctx, r.rowKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	row := make(map[string]float64, len(vals))
	for itemID, raw := range vals {
		strength, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// 脏数据跳过，不让单个字段拖垮整行
			continue
		}
		row[itemID] = strength
	}
	return row, nil
}

func (r *RedisStore) Count(ctx context.Context, userID string) (int, error) {
	n, err := r.client.HLen(ctx, r.rowKey(userID)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *RedisStore) Users(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, r.usersKey()).Result()
}

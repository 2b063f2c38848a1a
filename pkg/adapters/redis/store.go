package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/pixelpilot/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the adapter writes.
const DefaultPrefix = "pixelpilot:"

// Store implements ports.StateStore on a single Redis hash so that several
// processes can share one state. Values are stored type-tagged ("b:1",
// "i:42", "f:0.5", "s:text"); Toggle, Increment and CompareAndSet run as Lua
// scripts and are atomic across clients.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL expires the whole state after ttl without writes.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) hashKey() string {
	return s.prefix + "state"
}

func (s *Store) ttlMillis() int64 {
	return s.ttl.Milliseconds()
}

var toggleScript = backend.NewScript(`
local v = redis.call("HGET", KEYS[1], ARGV[1])
local next = "b:1"
if v == "b:1" then next = "b:0" end
redis.call("HSET", KEYS[1], ARGV[1], next)
if tonumber(ARGV[2]) > 0 then redis.call("PEXPIRE", KEYS[1], ARGV[2]) end
if next == "b:1" then return 1 end
return 0
`)

var incrementScript = backend.NewScript(`
local v = redis.call("HGET", KEYS[1], ARGV[1])
local n = 0
if v and string.sub(v, 1, 2) == "i:" then n = tonumber(string.sub(v, 3)) end
n = n + tonumber(ARGV[2])
redis.call("HSET", KEYS[1], ARGV[1], "i:" .. string.format("%d", n))
if tonumber(ARGV[3]) > 0 then redis.call("PEXPIRE", KEYS[1], ARGV[3]) end
return n
`)

var casScript = backend.NewScript(`
local v = redis.call("HGET", KEYS[1], ARGV[1])
if ARGV[2] == "" then
  if v then return 0 end
elseif v ~= ARGV[2] then
  return 0
end
if ARGV[3] == "" then
  redis.call("HDEL", KEYS[1], ARGV[1])
else
  redis.call("HSET", KEYS[1], ARGV[1], ARGV[3])
end
if tonumber(ARGV[4]) > 0 then redis.call("PEXPIRE", KEYS[1], ARGV[4]) end
return 1
`)

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (domain.Value, bool, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return domain.Value{}, false, err
	}
	raw, err := s.client.HGet(ctx, s.hashKey(), k).Result()
	if errors.Is(err, backend.Nil) {
		return domain.Value{}, false, nil
	}
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("failed to get %s from redis: %w", k, err)
	}
	v, err := decodeValue(raw)
	if err != nil {
		return domain.Value{}, false, fmt.Errorf("corrupt value for %s: %w", k, err)
	}
	return v, true, nil
}

// Set stores value under key. Storing the zero Value deletes the key.
func (s *Store) Set(ctx context.Context, key string, value domain.Value) error {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	if value.IsZero() {
		pipe.HDel(ctx, s.hashKey(), k)
	} else {
		pipe.HSet(ctx, s.hashKey(), k, encodeValue(value))
	}
	if s.ttl > 0 {
		pipe.PExpire(ctx, s.hashKey(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", k, err)
	}
	return nil
}

// Toggle flips a boolean entry.
func (s *Store) Toggle(ctx context.Context, key string) (bool, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return false, err
	}
	n, err := toggleScript.Run(ctx, s.client, []string{s.hashKey()}, k, s.ttlMillis()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to toggle %s in redis: %w", k, err)
	}
	return n == 1, nil
}

// Increment adds delta to an integer entry. Non-integer values restart from zero.
func (s *Store) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return 0, err
	}
	n, err := incrementScript.Run(ctx, s.client, []string{s.hashKey()}, k, delta, s.ttlMillis()).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s in redis: %w", k, err)
	}
	return n, nil
}

// CompareAndSet replaces the entry only if its encoded form equals old's.
func (s *Store) CompareAndSet(ctx context.Context, key string, old, next domain.Value) (bool, error) {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return false, err
	}
	n, err := casScript.Run(ctx, s.client, []string{s.hashKey()}, k, encodeValue(old), encodeValue(next), s.ttlMillis()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-set %s in redis: %w", k, err)
	}
	return n == 1, nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	k, err := domain.NormalizeKey(key)
	if err != nil {
		return err
	}
	if err := s.client.HDel(ctx, s.hashKey(), k).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", k, err)
	}
	return nil
}

// Snapshot returns a copy of all entries. Undecodable entries are skipped.
func (s *Store) Snapshot(ctx context.Context) (map[string]domain.Value, error) {
	all, err := s.client.HGetAll(ctx, s.hashKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot redis state: %w", err)
	}
	out := make(map[string]domain.Value, len(all))
	for k, raw := range all {
		if v, err := decodeValue(raw); err == nil {
			out[k] = v
		}
	}
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// encodeValue renders v in the tagged wire form. The zero Value encodes to "".
func encodeValue(v domain.Value) string {
	switch v.Kind() {
	case domain.ValueBool:
		b, _ := v.AsBool()
		if b {
			return "b:1"
		}
		return "b:0"
	case domain.ValueInt:
		i, _ := v.AsInt()
		return "i:" + strconv.FormatInt(i, 10)
	case domain.ValueFloat:
		f, _ := v.AsFloat()
		return "f:" + strconv.FormatFloat(f, 'g', -1, 64)
	case domain.ValueString:
		s, _ := v.AsString()
		return "s:" + s
	}
	return ""
}

func decodeValue(raw string) (domain.Value, error) {
	tag, body, ok := strings.Cut(raw, ":")
	if !ok {
		return domain.Value{}, fmt.Errorf("untagged value %q", raw)
	}
	switch tag {
	case "b":
		return domain.Bool(body == "1"), nil
	case "i":
		i, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Int(i), nil
	case "f":
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Float(f), nil
	case "s":
		return domain.String(body), nil
	}
	return domain.Value{}, fmt.Errorf("unknown value tag %q", tag)
}

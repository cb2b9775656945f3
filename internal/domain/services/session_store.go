package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"community-console-service/internal/domain/session"
	"community-console-service/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "console_session:"

// InterfaceSessionStore 会话存储接口
type InterfaceSessionStore interface {
	Save(ctx context.Context, sess *session.Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore 基于 Redis 的会话存储，多实例部署时使用
type RedisSessionStore struct {
	Client *redis.Client
}

// NewRedisClient 根据配置创建 Redis 客户端
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})
}

// NewRedisSessionStore creates a new Redis session store
func NewRedisSessionStore(client *redis.Client) InterfaceSessionStore {
	return &RedisSessionStore{Client: client}
}

// 1 Save 以 JSON 保存会话并设置过期时间
func (s *RedisSessionStore) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	jsonValue, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	return s.Client.Set(ctx, sessionKeyPrefix+sess.ID, jsonValue, ttl).Err()
}

// 2 Load 读取会话
func (s *RedisSessionStore) Load(ctx context.Context, id string) (*session.Session, error) {
	val, err := s.Client.Get(ctx, sessionKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// 3 Delete 删除会话，会话不存在时不报错
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.Client.Del(ctx, sessionKeyPrefix+id).Err()
}

type memorySession struct {
	sess      session.Session
	expiresAt time.Time
}

// MemorySessionStore 进程内会话存储，未启用 Redis 时使用
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

// NewMemorySessionStore creates an in-process session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

// Save 保存会话副本
func (s *MemorySessionStore) Save(_ context.Context, sess *session.Session, ttl time.Duration) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memorySession{sess: *sess}
	entry.sess.Identity = sess.Identity.Clone()
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.sessions[sess.ID] = entry
	return nil
}

// Load 读取会话，过期的会话视为不存在
func (s *MemorySessionStore) Load(_ context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		_ = s.Delete(context.Background(), id)
		return nil, ErrSessionNotFound
	}

	sess := entry.sess
	sess.Identity = entry.sess.Identity.Clone()
	return &sess, nil
}

// Delete 删除会话
func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len 当前保存的会话数量
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

package viewstate

import (
	"context"
	"sync"
)

// Ticket 一次加载的代号，只有最新的代号可以提交结果
type Ticket struct {
	Key        string
	Generation uint64
}

type entry[T any] struct {
	generation uint64 // 最近一次 Begin 分配的代号
	committed  uint64 // 已保存结果的代号，0 表示还没有
	value      T
}

// Store 按视图保存最近一次加载结果，旧请求晚到的结果不会覆盖新请求的结果
type Store[T any] struct {
	mu      sync.Mutex
	seq     uint64 // 全局递增，视图被清除后重建也不会复用旧代号
	entries map[string]*entry[T]
}

// NewStore 创建存储
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
	}
}

// Begin 开始一次加载，之前发出的代号全部作废
func (s *Store[T]) Begin(key string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{}
		s.entries[key] = e
	}
	s.seq++
	e.generation = s.seq
	return Ticket{Key: key, Generation: e.generation}
}

// Commit 提交加载结果。代号已过期、上下文已取消或视图已被清除时丢弃并返回 false
func (s *Store[T]) Commit(ctx context.Context, t Ticket, value T) bool {
	if ctx.Err() != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[t.Key]
	if !ok || e.generation != t.Generation {
		return false
	}
	e.value = value
	e.committed = t.Generation
	return true
}

// Newer 返回比代号 t 更新的已保存结果，供被取代的请求改用
func (s *Store[T]) Newer(t Ticket) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[t.Key]
	if !ok || e.committed <= t.Generation {
		return zero, false
	}
	return e.value, true
}

// Forget 清除视图，退出登录时调用
func (s *Store[T]) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

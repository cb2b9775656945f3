package session

import (
	"context"
	"time"

	"community-console-service/internal/domain/models"
)

// Session 一次登录的会话状态：登录时创建，退出时清除，完成档案关联时更新
type Session struct {
	ID        string           `json:"id"`
	Token     string           `json:"token"` // 上游接口的 bearer token
	Identity  *models.Identity `json:"identity,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// New 创建会话
func New(id, token string, identity *models.Identity, now time.Time) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		Identity:  identity.Clone(),
		CreatedAt: now,
	}
}

// GetIdentity 返回当前身份，不存在时 ok 为 false
func (s *Session) GetIdentity() (*models.Identity, bool) {
	if s == nil || s.Identity == nil {
		return nil, false
	}
	return s.Identity.Clone(), true
}

// Authenticated 是否持有上游令牌
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// HasCapability 没有身份时返回 false，不报错
func (s *Session) HasCapability(capability Capability) bool {
	identity, ok := s.GetIdentity()
	if !ok {
		return false
	}
	return RoleHasCapability(identity.Role, capability)
}

// HasAnyRole 身份角色是否在给定集合中
func (s *Session) HasAnyRole(roles ...models.Role) bool {
	identity, ok := s.GetIdentity()
	if !ok {
		return false
	}
	for _, r := range roles {
		if identity.Role == r {
			return true
		}
	}
	return false
}

// Capabilities 当前身份的全部权限
func (s *Session) Capabilities() []string {
	identity, ok := s.GetIdentity()
	if !ok {
		return []string{}
	}
	return CapabilitiesOf(identity.Role)
}

// WithLinkedResident 返回关联了居民档案的新会话，原会话不变
func (s *Session) WithLinkedResident(residentID models.FlexibleID) *Session {
	next := *s
	next.Identity = s.Identity.Clone()
	if next.Identity != nil {
		next.Identity.LinkedResidentID = residentID
	}
	return &next
}

type contextKey string

const sessionContextKey contextKey = "consoleSession"

// WithSession 将会话放入上下文
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext 从上下文取出会话，不存在时返回 nil
func FromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return s
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/session"
	"community-console-service/pkg/logger"

	"github.com/google/uuid"
)

// ErrInvalidCredentials 用户名或密码为空
var ErrInvalidCredentials = errors.New("username and password are required")

// ErrInvalidSessionToken 控制台令牌无效或会话已失效
var ErrInvalidSessionToken = errors.New("invalid session token")

// Upstream 认证相关的上游接口
type Upstream interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (*models.Identity, error)
	LinkResident(ctx context.Context, token string, userID, residentID models.FlexibleID) (*models.User, error)
}

// SignInResult 登录结果
type SignInResult struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   *session.Session `json:"-"`
}

// InterfaceAuthService 登录、退出、会话解析和档案关联
type InterfaceAuthService interface {
	SignIn(ctx context.Context, username, password string) (*SignInResult, error)
	SignOut(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, tokenString string) (*session.Session, error)
	LinkProfile(ctx context.Context, sess *session.Session, residentID models.FlexibleID) (*session.Session, error)
}

// AuthService 会话只在登录、退出和档案关联时写入
type AuthService struct {
	upstream  Upstream
	jwt       InterfaceJWTService
	store     InterfaceSessionStore
	ttl       time.Duration
	onSignOut []func(sessionID string)
	now       func() time.Time
}

// NewAuthService 创建认证服务；onSignOut 在会话清除后调用，用于清理会话相关的缓存视图
func NewAuthService(upstream Upstream, jwtService InterfaceJWTService, store InterfaceSessionStore, ttl time.Duration, onSignOut ...func(sessionID string)) InterfaceAuthService {
	return &AuthService{
		upstream:  upstream,
		jwt:       jwtService,
		store:     store,
		ttl:       ttl,
		onSignOut: onSignOut,
		now:       time.Now,
	}
}

// SignIn 上游登录，获取身份，创建会话并签发控制台令牌
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	upstreamToken, err := s.upstream.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	identity, err := s.upstream.Me(ctx, upstreamToken)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if !identity.Role.Valid() {
		logger.Warning("User %s has unknown role %q, no capabilities granted", identity.ID, identity.Role)
	}

	sess := session.New(uuid.NewString(), upstreamToken, identity, s.now())
	if err := s.store.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, expiresAt, err := s.jwt.GenerateToken(sess.ID, identity)
	if err != nil {
		_ = s.store.Delete(ctx, sess.ID)
		return nil, fmt.Errorf("sign token: %w", err)
	}

	logger.Info("User %s signed in as %s, session %s", identity.ID, identity.Role, sess.ID)
	return &SignInResult{Token: token, ExpiresAt: expiresAt, Session: sess}, nil
}

// SignOut 清除会话
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	for _, fn := range s.onSignOut {
		fn(sessionID)
	}
	logger.Info("Session %s signed out", sessionID)
	return nil
}

// Authenticate 校验控制台令牌并加载会话
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*session.Session, error) {
	claims, err := s.jwt.ExtractClaims(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	sess, err := s.store.Load(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("%w: session %s not found", ErrInvalidSessionToken, claims.SessionID)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// LinkProfile 在上游关联居民档案后更新会话
func (s *AuthService) LinkProfile(ctx context.Context, sess *session.Session, residentID models.FlexibleID) (*session.Session, error) {
	identity, ok := sess.GetIdentity()
	if !ok {
		return nil, ErrInvalidSessionToken
	}
	if residentID.IsZero() {
		return nil, errors.New("resident id is required")
	}

	if _, err := s.upstream.LinkResident(ctx, sess.Token, identity.ID, residentID); err != nil {
		return nil, err
	}

	next := sess.WithLinkedResident(residentID)
	if err := s.store.Save(ctx, next, s.remainingTTL(next)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	logger.Info("User %s linked to resident %s", identity.ID, residentID)
	return next, nil
}

// remainingTTL 关联档案不延长会话有效期
func (s *AuthService) remainingTTL(sess *session.Session) time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	left := s.ttl - s.now().Sub(sess.CreatedAt)
	if left <= 0 {
		return time.Second
	}
	return left
}

package services

import (
	"errors"
	"fmt"
	"time"

	"community-console-service/internal/domain/models"
	"community-console-service/internal/infrastructure/config"

	"github.com/golang-jwt/jwt/v4"
)

// InterfaceJWTService 定义JWT服务接口
type InterfaceJWTService interface {
	GenerateToken(sessionID string, identity *models.Identity) (string, time.Time, error)
	ValidateToken(tokenString string) (*jwt.Token, error)
	ExtractClaims(tokenString string) (*JWTClaims, error)
}

// JWTService 签发控制台自己的令牌，令牌只携带会话ID，上游令牌保存在会话存储中
type JWTService struct {
	secretKey string
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

// JWTClaims 定义JWT令牌的声明结构
type JWTClaims struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

// NewJWTService 创建一个新的JWT服务
func NewJWTService(cfg *config.Config) InterfaceJWTService {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTService{
		secretKey: cfg.JWTSecretKey,
		issuer:    "community-console-service",
		ttl:       ttl,
		now:       time.Now,
	}
}

// GenerateToken 生成JWT令牌，返回令牌和过期时间
func (s *JWTService) GenerateToken(sessionID string, identity *models.Identity) (string, time.Time, error) {
	if sessionID == "" || identity == nil {
		return "", time.Time{}, errors.New("session id and identity are required")
	}

	now := s.now()
	expirationTime := now.Add(s.ttl)

	claims := &JWTClaims{
		SessionID: sessionID,
		UserID:    identity.ID.String(),
		Role:      identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expirationTime, nil
}

// ValidateToken 验证JWT令牌
func (s *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名算法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})
}

// ExtractClaims 从令牌中提取声明
func (s *JWTService) ExtractClaims(tokenString string) (*JWTClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Issuer != s.issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if claims.SessionID == "" {
		return nil, errors.New("token carries no session id")
	}
	return claims, nil
}

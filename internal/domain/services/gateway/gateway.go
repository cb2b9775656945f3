package gateway

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/singleflight"

	"community-console-service/internal/domain/models"
)

// Gateway 上游社区接口的统一入口
type Gateway struct {
	client *Client
	me     singleflight.Group

	Residents         *Resource[models.Resident]
	Households        *Resource[models.Household]
	JoinRequests      *Resource[models.JoinHouseholdRequest]
	TemporaryStays    *Resource[models.TemporaryStayRecord]
	TemporaryAbsences *Resource[models.TemporaryAbsenceRecord]
	FeeSchedules      *Resource[models.FeeSchedule]
	Receipts          *Resource[models.Receipt]
	Users             *Resource[models.User]
}

// New 创建网关
func New(client *Client) *Gateway {
	return &Gateway{
		client:            client,
		Residents:         NewResource[models.Resident](client, "residents", "/nhankhau"),
		Households:        NewResource[models.Household](client, "households", "/hokhau"),
		JoinRequests:      NewResource[models.JoinHouseholdRequest](client, "join_requests", "/donxinvaoho"),
		TemporaryStays:    NewResource[models.TemporaryStayRecord](client, "temporary_stays", "/tamtru"),
		TemporaryAbsences: NewResource[models.TemporaryAbsenceRecord](client, "temporary_absences", "/tamvang"),
		FeeSchedules:      NewResource[models.FeeSchedule](client, "fee_schedules", "/khoanthu"),
		Receipts:          NewResource[models.Receipt](client, "receipts", "/phieuthu"),
		Users:             NewResource[models.User](client, "users", "/users"),
	}
}

// BaseURL 上游地址
func (g *Gateway) BaseURL() string { return g.client.BaseURL() }

// Me 获取令牌对应的身份；同一令牌的并发调用合并为一次上游请求
func (g *Gateway) Me(ctx context.Context, token string) (*models.Identity, error) {
	v, err, _ := g.me.Do(token, func() (interface{}, error) {
		body, err := g.client.do(ctx, request{
			resource: "me",
			method:   http.MethodGet,
			path:     "/me",
			token:    token,
		})
		if err != nil {
			return nil, err
		}
		identity, err := decodeOne[models.Identity](body)
		if err != nil {
			return nil, err
		}
		if identity == nil {
			return nil, newStatusError(http.StatusUnauthorized, "")
		}
		return identity, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Identity).Clone(), nil
}

type loginPayload struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
}

// Login 用账号密码换取上游 bearer token
func (g *Gateway) Login(ctx context.Context, username, password string) (string, error) {
	body, err := g.client.do(ctx, request{
		resource: "auth",
		method:   http.MethodPost,
		path:     "/auth/login",
		body: map[string]string{
			"username": username,
			"password": password,
		},
	})
	if err != nil {
		return "", err
	}
	payload, err := decodeOne[loginPayload](body)
	if err != nil {
		return "", err
	}
	if payload == nil {
		return "", errors.New("login response carries no token")
	}
	if payload.Token != "" {
		return payload.Token, nil
	}
	if payload.AccessToken != "" {
		return payload.AccessToken, nil
	}
	return "", errors.New("login response carries no token")
}

// UpdateUserRole PATCH /users/:id {role}
func (g *Gateway) UpdateUserRole(ctx context.Context, token string, id models.FlexibleID, role models.Role) (*models.User, error) {
	return g.Users.Patch(ctx, token, id, map[string]models.Role{"role": role})
}

// UpdateUserStatus PATCH /users/:id {status}
func (g *Gateway) UpdateUserStatus(ctx context.Context, token string, id models.FlexibleID, status models.UserStatus) (*models.User, error) {
	return g.Users.Patch(ctx, token, id, map[string]models.UserStatus{"status": status})
}

// LinkResident PATCH /users/:id {nhanKhauId}
func (g *Gateway) LinkResident(ctx context.Context, token string, userID, residentID models.FlexibleID) (*models.User, error) {
	return g.Users.Patch(ctx, token, userID, map[string]models.FlexibleID{"nhanKhauId": residentID})
}

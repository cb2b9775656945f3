package gateway

import (
	"context"
	"net/http"
	"net/url"

	"community-console-service/internal/domain/models"
)

// Resource 一个上游实体集合的 listAll/getById/create/update/delete
type Resource[T any] struct {
	client *Client
	name   string
	path   string
}

// NewResource 创建资源访问器，path 形如 "/nhankhau"
func NewResource[T any](client *Client, name, path string) *Resource[T] {
	return &Resource[T]{client: client, name: name, path: path}
}

// Name 资源名，用于日志和指标
func (r *Resource[T]) Name() string { return r.name }

func (r *Resource[T]) itemPath(id models.FlexibleID) string {
	return r.path + "/" + url.PathEscape(id.String())
}

// ListAll 获取集合，filter 原样作为查询参数
func (r *Resource[T]) ListAll(ctx context.Context, token string, filter url.Values) ([]T, error) {
	body, err := r.client.do(ctx, request{
		resource: r.name,
		method:   http.MethodGet,
		path:     r.path,
		query:    filter,
		token:    token,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[T](body)
}

// GetByID 获取单个实体
func (r *Resource[T]) GetByID(ctx context.Context, token string, id models.FlexibleID) (*T, error) {
	body, err := r.client.do(ctx, request{
		resource: r.name,
		method:   http.MethodGet,
		path:     r.itemPath(id),
		token:    token,
	})
	if err != nil {
		return nil, err
	}
	item, err := decodeOne[T](body)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, newStatusError(http.StatusNotFound, "")
	}
	return item, nil
}

// Create 创建实体；上游没有返回实体时结果为 nil
func (r *Resource[T]) Create(ctx context.Context, token string, payload interface{}) (*T, error) {
	body, err := r.client.do(ctx, request{
		resource: r.name,
		method:   http.MethodPost,
		path:     r.path,
		token:    token,
		body:     payload,
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[T](body)
}

// Update 全量更新实体
func (r *Resource[T]) Update(ctx context.Context, token string, id models.FlexibleID, payload interface{}) (*T, error) {
	return r.write(ctx, http.MethodPut, token, id, payload)
}

// Patch 部分更新实体
func (r *Resource[T]) Patch(ctx context.Context, token string, id models.FlexibleID, payload interface{}) (*T, error) {
	return r.write(ctx, http.MethodPatch, token, id, payload)
}

func (r *Resource[T]) write(ctx context.Context, method, token string, id models.FlexibleID, payload interface{}) (*T, error) {
	body, err := r.client.do(ctx, request{
		resource: r.name,
		method:   method,
		path:     r.itemPath(id),
		token:    token,
		body:     payload,
	})
	if err != nil {
		return nil, err
	}
	return decodeOne[T](body)
}

// Delete 删除实体
func (r *Resource[T]) Delete(ctx context.Context, token string, id models.FlexibleID) error {
	_, err := r.client.do(ctx, request{
		resource: r.name,
		method:   http.MethodDelete,
		path:     r.itemPath(id),
		token:    token,
	})
	return err
}

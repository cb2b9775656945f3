package linkage

import (
	"context"

	"community-console-service/internal/domain/models"
	"community-console-service/pkg/logger"
)

// ResidentFetcher 按ID获取居民
type ResidentFetcher interface {
	GetByID(ctx context.Context, token string, id models.FlexibleID) (*models.Resident, error)
}

// HouseholdFetcher 按ID获取户口
type HouseholdFetcher interface {
	GetByID(ctx context.Context, token string, id models.FlexibleID) (*models.Household, error)
}

// Chain 用户 → 居民 → 户口 的解析结果，任一环节都可能缺失
type Chain struct {
	Resident  *models.Resident  `json:"resident"`
	Household *models.Household `json:"household"`
}

// HasProfile 是否存在居民档案
func (c Chain) HasProfile() bool {
	return c.Resident != nil
}

// Resolver 解析身份关联的居民和户口
type Resolver struct {
	residents  ResidentFetcher
	households HouseholdFetcher
}

// NewResolver 创建解析器
func NewResolver(residents ResidentFetcher, households HouseholdFetcher) *Resolver {
	return &Resolver{residents: residents, households: households}
}

// ResolveChain 从不返回错误：
// 未关联居民时直接返回空链，不发起请求；居民获取失败返回空链；
// 户口获取失败时保留已获取的居民。
func (r *Resolver) ResolveChain(ctx context.Context, token string, identity *models.Identity) Chain {
	if !identity.HasLinkedResident() {
		return Chain{}
	}

	resident, err := r.residents.GetByID(ctx, token, identity.LinkedResidentID)
	if err != nil || resident == nil {
		logger.Warning("获取身份 %s 关联的居民 %s 失败: %v", identity.ID, identity.LinkedResidentID, err)
		return Chain{}
	}

	if !resident.HasHousehold() {
		return Chain{Resident: resident}
	}

	household, err := r.households.GetByID(ctx, token, resident.HouseholdID)
	if err != nil || household == nil {
		logger.Warning("获取居民 %s 所属户口 %s 失败: %v", resident.ID, resident.HouseholdID, err)
		return Chain{Resident: resident}
	}

	if err := household.Validate(); err != nil {
		logger.Warning("户口数据不一致，仍按原样返回: %v", err)
	}

	return Chain{Resident: resident, Household: household}
}

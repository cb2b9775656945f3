package services

import (
	"context"

	"community-console-service/internal/domain/models"
	"community-console-service/pkg/logger"

	"gorm.io/gorm"
)

// InterfaceOperationLogService 操作日志服务接口
type InterfaceOperationLogService interface {
	Record(ctx context.Context, entry *models.OperationLog)
	List(page, pageSize int, operationType string) ([]models.OperationLog, int64, error)
}

// OperationLogService 基于数据库的操作日志
type OperationLogService struct {
	DB *gorm.DB
}

// NewOperationLogService 数据库未启用时返回空实现
func NewOperationLogService(db *gorm.DB) InterfaceOperationLogService {
	if db == nil {
		return NoopOperationLogService{}
	}
	return &OperationLogService{DB: db}
}

// 1 Record 写入失败只记录日志，不影响用户操作
func (s *OperationLogService) Record(ctx context.Context, entry *models.OperationLog) {
	if entry == nil {
		return
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error("Failed to record operation %s on %s/%s: %v", entry.OperationType, entry.TargetType, entry.TargetID, err)
	}
}

// 2 List 分页查询，按时间倒序
func (s *OperationLogService) List(page, pageSize int, operationType string) ([]models.OperationLog, int64, error) {
	var logs []models.OperationLog
	var total int64

	query := s.DB.Model(&models.OperationLog{})
	if operationType != "" {
		query = query.Where("operation_type = ?", operationType)
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// NoopOperationLogService 不记录任何操作
type NoopOperationLogService struct{}

// Record 忽略
func (NoopOperationLogService) Record(context.Context, *models.OperationLog) {}

// List 总是返回空列表
func (NoopOperationLogService) List(int, int, string) ([]models.OperationLog, int64, error) {
	return []models.OperationLog{}, 0, nil
}

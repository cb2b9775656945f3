package models

// OperationLog 控制台管理操作日志
type OperationLog struct {
	BaseModel
	OperationType string `gorm:"type:varchar(100);not null;index" json:"operation_type"` // 如: user_role_change, user_status_change, resident_delete
	ActorID       string `gorm:"type:varchar(64);index" json:"actor_id"`                 // 执行操作的账号ID
	TargetType    string `gorm:"type:varchar(50)" json:"target_type"`
	TargetID      string `gorm:"type:varchar(64)" json:"target_id"`
	Details       string `gorm:"type:text" json:"details"`
	Success       bool   `gorm:"default:true" json:"success"` // 操作是否成功
	IPAddress     string `gorm:"type:varchar(45)" json:"ip_address"`
}

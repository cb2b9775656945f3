package models

// JoinHouseholdRequest 申请加入户口
type JoinHouseholdRequest struct {
	ID                  FlexibleID `json:"id,omitempty"`
	RequesterResidentID FlexibleID `json:"nhanKhauId"`
	TargetHouseholdID   FlexibleID `json:"hoKhauId"`
	RelationToHead      string     `json:"quanHe"`
	CreatedAt           *Date      `json:"ngayTao,omitempty"`
	CreatedByIdentityID FlexibleID `json:"nguoiTaoId"`
}

package models

// PermitStatus 暂住/暂离申请状态
type PermitStatus string

const (
	PermitStatusPending  PermitStatus = "pending"
	PermitStatusApproved PermitStatus = "approved"
	PermitStatusRejected PermitStatus = "rejected"
)

// TemporaryStayRecord 暂住登记
type TemporaryStayRecord struct {
	ID                FlexibleID   `json:"id"`
	SubjectResidentID FlexibleID   `json:"nhanKhauId"`
	Status            PermitStatus `json:"trangThai"`
	SubmittedAt       *Date        `json:"ngayTao,omitempty"`
}

// TemporaryAbsenceRecord 暂离登记
type TemporaryAbsenceRecord struct {
	ID                FlexibleID   `json:"id"`
	SubjectResidentID FlexibleID   `json:"nhanKhauId"`
	Status            PermitStatus `json:"trangThai"`
	SubmittedAt       *Date        `json:"ngayTao,omitempty"`
}

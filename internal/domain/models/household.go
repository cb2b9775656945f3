package models

import "fmt"

// HouseholdStatus 户口状态
type HouseholdStatus string

const (
	HouseholdStatusActive   HouseholdStatus = "active"
	HouseholdStatusPending  HouseholdStatus = "pending"
	HouseholdStatusInactive HouseholdStatus = "inactive"
)

// HouseholdMember 户口成员及与户主关系
type HouseholdMember struct {
	ResidentID     FlexibleID `json:"nhanKhauId"`
	RelationToHead string     `json:"quanHe"`
}

// Household 户口
type Household struct {
	ID              FlexibleID        `json:"id"`
	HouseholdNumber string            `json:"soHoKhau"`
	HeadResidentID  FlexibleID        `json:"chuHoId"`
	Address         string            `json:"diaChi"`
	Members         []HouseholdMember `json:"thanhVien"`
	Status          HouseholdStatus   `json:"trangThai"`
}

// HasMember 居民是否在成员列表中
func (h *Household) HasMember(residentID FlexibleID) bool {
	for _, m := range h.Members {
		if m.ResidentID == residentID {
			return true
		}
	}
	return false
}

// Validate 户主必须在成员列表中
func (h *Household) Validate() error {
	if h.HeadResidentID.IsZero() {
		return fmt.Errorf("household %s has no head", h.ID)
	}
	if !h.HasMember(h.HeadResidentID) {
		return fmt.Errorf("household %s: head %s is not a member", h.ID, h.HeadResidentID)
	}
	return nil
}

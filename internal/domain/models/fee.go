package models

// FeeCategory 收费类别
type FeeCategory string

const (
	FeeCategoryMandatory    FeeCategory = "mandatory"
	FeeCategoryContribution FeeCategory = "contribution"
	FeeCategoryService      FeeCategory = "service"
)

// FeeSchedule 收费项目（Khoản thu）
type FeeSchedule struct {
	ID        FlexibleID  `json:"id"`
	Name      string      `json:"tenKhoanThu"`
	Category  FeeCategory `json:"loai"`
	UnitPrice float64     `json:"donGia"`
	Unit      string      `json:"donVi"`
	ValidFrom *Date       `json:"ngayBatDau,omitempty"`
	ValidTo   *Date       `json:"ngayKetThuc,omitempty"`
}

// ReceiptStatus 收据状态
type ReceiptStatus string

const (
	ReceiptStatusPaid   ReceiptStatus = "paid"
	ReceiptStatusUnpaid ReceiptStatus = "unpaid"
)

// Receipt 收据（Phiếu thu），一个收费项目对一个户口
type Receipt struct {
	ID            FlexibleID    `json:"id"`
	FeeScheduleID FlexibleID    `json:"khoanThuId"`
	HouseholdID   FlexibleID    `json:"hoKhauId"`
	Status        ReceiptStatus `json:"trangThai"`
}

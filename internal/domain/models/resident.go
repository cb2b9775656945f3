package models

// 性别取值，与上游保持一致
const (
	GenderMale   = "Nam"
	GenderFemale = "Nữ"
)

// Resident 居民（人口）档案
type Resident struct {
	ID          FlexibleID `json:"id"`
	FullName    string     `json:"hoTen"`
	BirthDate   *Date      `json:"ngaySinh,omitempty"`
	Gender      string     `json:"gioiTinh"`
	NationalID  string     `json:"cccd"`
	Ethnicity   string     `json:"danToc"`
	Occupation  string     `json:"ngheNghiep"`
	Phone       string     `json:"soDienThoai,omitempty"`
	HouseholdID FlexibleID `json:"hoKhauId,omitempty"`
}

// HasHousehold 是否属于某个户口
func (r *Resident) HasHousehold() bool {
	return r != nil && !r.HouseholdID.IsZero()
}

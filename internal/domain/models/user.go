package models

// UserStatus 账号状态
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusLocked UserStatus = "locked"
)

// Valid 是否为已知状态
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusLocked
}

// User 账号，对应上游 /users
type User struct {
	ID               FlexibleID `json:"id"`
	Username         string     `json:"username"`
	Role             Role       `json:"role"`
	Status           UserStatus `json:"status"`
	LinkedResidentID FlexibleID `json:"nhanKhauId,omitempty"`
}

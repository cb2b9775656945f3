package models

import "encoding/json"

// Role 控制台用户角色
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleGroupLeader   Role = "group_leader"
	RoleAccountant    Role = "accountant"
	RoleHouseholdHead Role = "household_head"
	RoleResident      Role = "resident"
)

// AllRoles 全部角色，按权限从高到低
var AllRoles = []Role{RoleAdmin, RoleGroupLeader, RoleAccountant, RoleHouseholdHead, RoleResident}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleGroupLeader, RoleAccountant, RoleHouseholdHead, RoleResident:
		return true
	}
	return false
}

// Identity 当前登录用户，来自上游 GET /me
type Identity struct {
	ID               FlexibleID `json:"id"`
	DisplayName      string     `json:"username"`
	Role             Role       `json:"role"`
	LinkedResidentID FlexibleID `json:"nhanKhauId,omitempty"`
}

// UnmarshalJSON 上游部分版本只返回 displayName，username 为空时用它补上
func (i *Identity) UnmarshalJSON(data []byte) error {
	type plain Identity
	aux := struct {
		*plain
		DisplayNameAlt string `json:"displayName"`
	}{plain: (*plain)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if i.DisplayName == "" {
		i.DisplayName = aux.DisplayNameAlt
	}
	return nil
}

// HasLinkedResident 是否已关联居民档案
func (i *Identity) HasLinkedResident() bool {
	return i != nil && !i.LinkedResidentID.IsZero()
}

// Clone 返回副本，避免共享会话状态被调用方修改
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

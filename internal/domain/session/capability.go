package session

import (
	"sort"
	"strings"

	"community-console-service/internal/domain/models"
)

// Capability 形如 "<resource>:<action>" 的权限标识
type Capability string

// Resource 返回资源部分
func (c Capability) Resource() string {
	resource, _, _ := strings.Cut(string(c), ":")
	return resource
}

// Action 返回操作部分
func (c Capability) Action() string {
	_, action, _ := strings.Cut(string(c), ":")
	return action
}

// Valid 资源和操作都不能为空
func (c Capability) Valid() bool {
	resource, action, ok := strings.Cut(string(c), ":")
	return ok && resource != "" && action != "" && !strings.Contains(action, ":")
}

// 控制台管理的资源
const (
	ResourceResident         = "resident"
	ResourceHousehold        = "household"
	ResourceJoinRequest      = "joinRequest"
	ResourceTemporaryStay    = "temporaryStay"
	ResourceTemporaryAbsence = "temporaryAbsence"
	ResourceFeeSchedule      = "feeSchedule"
	ResourceReceipt          = "receipt"
	ResourceUser             = "user"
	ResourceReport           = "report"
	ResourceOperationLog     = "operationLog"
)

// 资源上的操作
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
)

// Token 拼接权限标识
func Token(resource, action string) Capability {
	return Capability(resource + ":" + action)
}

func crud(resource string) []Capability {
	return []Capability{
		Token(resource, ActionRead),
		Token(resource, ActionCreate),
		Token(resource, ActionUpdate),
		Token(resource, ActionDelete),
	}
}

func grant(groups ...[]Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{})
	for _, g := range groups {
		for _, c := range g {
			set[c] = struct{}{}
		}
	}
	return set
}

// capabilityTable 角色到权限集合的静态映射，所有权限判断只查这一张表
var capabilityTable = map[models.Role]map[Capability]struct{}{
	models.RoleAdmin: grant(
		crud(ResourceResident),
		crud(ResourceHousehold),
		crud(ResourceJoinRequest),
		crud(ResourceTemporaryStay),
		crud(ResourceTemporaryAbsence),
		crud(ResourceFeeSchedule),
		crud(ResourceReceipt),
		crud(ResourceUser),
		[]Capability{
			Token(ResourceReport, ActionRead),
			Token(ResourceReport, ActionExport),
			Token(ResourceOperationLog, ActionRead),
		},
	),
	models.RoleGroupLeader: grant(
		crud(ResourceResident),
		crud(ResourceHousehold),
		crud(ResourceJoinRequest),
		crud(ResourceTemporaryStay),
		crud(ResourceTemporaryAbsence),
		[]Capability{
			Token(ResourceFeeSchedule, ActionRead),
			Token(ResourceReceipt, ActionRead),
			Token(ResourceReport, ActionRead),
			Token(ResourceReport, ActionExport),
		},
	),
	models.RoleAccountant: grant(
		crud(ResourceFeeSchedule),
		crud(ResourceReceipt),
		[]Capability{
			Token(ResourceResident, ActionRead),
			Token(ResourceHousehold, ActionRead),
		},
	),
	models.RoleHouseholdHead: grant(
		[]Capability{
			Token(ResourceResident, ActionRead),
			Token(ResourceHousehold, ActionRead),
			Token(ResourceJoinRequest, ActionRead),
			Token(ResourceJoinRequest, ActionCreate),
			Token(ResourceTemporaryStay, ActionRead),
			Token(ResourceTemporaryStay, ActionCreate),
			Token(ResourceTemporaryAbsence, ActionRead),
			Token(ResourceTemporaryAbsence, ActionCreate),
			Token(ResourceFeeSchedule, ActionRead),
			Token(ResourceReceipt, ActionRead),
		},
	),
	models.RoleResident: grant(
		[]Capability{
			Token(ResourceResident, ActionRead),
			Token(ResourceHousehold, ActionRead),
			Token(ResourceJoinRequest, ActionCreate),
			Token(ResourceTemporaryStay, ActionCreate),
			Token(ResourceTemporaryAbsence, ActionCreate),
			Token(ResourceFeeSchedule, ActionRead),
		},
	),
}

// RoleHasCapability 查表判断角色是否拥有权限，未知角色一律没有
func RoleHasCapability(role models.Role, capability Capability) bool {
	caps, ok := capabilityTable[role]
	if !ok {
		return false
	}
	_, ok = caps[capability]
	return ok
}

// CapabilitiesOf 返回角色的全部权限，已排序
func CapabilitiesOf(role models.Role) []string {
	caps := capabilityTable[role]
	out := make([]string, 0, len(caps))
	for c := range caps {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

package gate

import (
	"strings"

	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/session"
)

// 控制台页面路径
const (
	SignInPath       = "/signin"
	DashboardPath    = "/dashboard"
	ProfileSetupPath = "/profile/setup"
)

// Policy 一个页面（及其子路径）的访问要求
type Policy struct {
	Path            string             `json:"path"`
	Authenticated   bool               `json:"authenticated"`
	Roles           []models.Role      `json:"roles,omitempty"`
	Capability      session.Capability `json:"capability,omitempty"`
	ProfileRequired bool               `json:"profile_required"`
}

// requiresSession 除公开页面外都需要登录
func (p Policy) requiresSession() bool {
	return p.Authenticated || len(p.Roles) > 0 || p.Capability != "" || p.ProfileRequired
}

// matches 按路径段前缀匹配，"/users" 匹配 "/users/3"，不匹配 "/users-old"
func (p Policy) matches(path string) bool {
	if p.Path == "/" {
		return true
	}
	return path == p.Path || strings.HasPrefix(path, p.Path+"/")
}

// rootPolicy 未登记的页面都按需要登录处理
var rootPolicy = Policy{Path: "/", Authenticated: true}

// DefaultPolicies 控制台的页面访问表
func DefaultPolicies() []Policy {
	return []Policy{
		{Path: SignInPath},
		{Path: DashboardPath, Authenticated: true},
		{Path: ProfileSetupPath, Authenticated: true},
		{Path: "/home", Authenticated: true, ProfileRequired: true},
		{Path: "/join-household", Authenticated: true, ProfileRequired: true},
		{Path: "/admin/report", Roles: []models.Role{models.RoleAdmin, models.RoleGroupLeader}},
		{Path: "/users", Roles: []models.Role{models.RoleAdmin}},
		{Path: "/operation-logs", Roles: []models.Role{models.RoleAdmin}},
		{Path: "/residents", Capability: session.Token(session.ResourceResident, session.ActionRead)},
		{Path: "/households", Capability: session.Token(session.ResourceHousehold, session.ActionRead)},
		{Path: "/join-requests", Roles: []models.Role{models.RoleAdmin, models.RoleGroupLeader, models.RoleHouseholdHead}},
		{Path: "/temporary-stays", Authenticated: true},
		{Path: "/temporary-absences", Authenticated: true},
		{Path: "/fee-schedules", Capability: session.Token(session.ResourceFeeSchedule, session.ActionRead)},
		{Path: "/receipts", Capability: session.Token(session.ResourceReceipt, session.ActionRead)},
	}
}

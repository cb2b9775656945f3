package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-console-service/internal/domain/models"
	"community-console-service/internal/domain/services/linkage"
	"community-console-service/internal/domain/session"
)

type countingResidents struct {
	calls int
	err   error
}

func (c *countingResidents) GetByID(ctx context.Context, token string, id models.FlexibleID) (*models.Resident, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.Resident{ID: id}, nil
}

type noHouseholds struct{}

func (noHouseholds) GetByID(ctx context.Context, token string, id models.FlexibleID) (*models.Household, error) {
	return nil, errors.New("unused")
}

func newGate(residents *countingResidents, opts ...Option) *Gate {
	return New(linkage.NewResolver(residents, noHouseholds{}), nil, opts...)
}

func sessionFor(role models.Role, linked models.FlexibleID) *session.Session {
	return session.New("s", "tok", &models.Identity{ID: "1", Role: role, LinkedResidentID: linked}, time.Now())
}

func TestEvaluate_RoleGatedRedirectsResident(t *testing.T) {
	g := newGate(&countingResidents{})
	p := Policy{Path: "/admin/report", Roles: []models.Role{models.RoleAdmin, models.RoleGroupLeader}}

	d := g.Evaluate(context.Background(), sessionFor(models.RoleResident, "5"), "/admin/report", p)

	assert.Equal(t, StateRedirect, d.State)
	assert.Equal(t, DashboardPath, d.Target)
	assert.NotEmpty(t, d.Notice)
	assert.False(t, d.Allowed())
}

func TestEvaluate_RoleGatedAllowsMatchingRole(t *testing.T) {
	g := newGate(&countingResidents{})
	for _, role := range []models.Role{models.RoleAdmin, models.RoleGroupLeader} {
		d := g.EvaluatePath(context.Background(), sessionFor(role, ""), "/admin/report")
		assert.Equal(t, StateAllowed, d.State, role)
	}
}

func TestEvaluate_NoSessionRedirectsToSignIn(t *testing.T) {
	g := newGate(&countingResidents{})

	for _, sess := range []*session.Session{nil, {ID: "x"}} {
		d := g.EvaluatePath(context.Background(), sess, "/dashboard")
		assert.Equal(t, StateRedirect, d.State)
		assert.Equal(t, SignInPath, d.Target)
	}
}

func TestEvaluate_PublicRoute(t *testing.T) {
	d := newGate(&countingResidents{}).EvaluatePath(context.Background(), nil, SignInPath)
	assert.Equal(t, StateAllowed, d.State)
}

func TestEvaluate_UnknownRouteRequiresSignIn(t *testing.T) {
	d := newGate(&countingResidents{}).EvaluatePath(context.Background(), nil, "/somewhere")
	assert.Equal(t, StateRedirect, d.State)
	assert.Equal(t, SignInPath, d.Target)
}

func TestEvaluate_ProfileRequiredWithoutLinkBlocksWithoutCalls(t *testing.T) {
	residents := &countingResidents{}
	var states []State
	g := newGate(residents, WithObserver(func(route string, s State) { states = append(states, s) }))

	d := g.EvaluatePath(context.Background(), sessionFor(models.RoleResident, ""), "/home")

	assert.Equal(t, StateBlockedPrompt, d.State)
	require.NotNil(t, d.Prompt)
	assert.False(t, d.Prompt.Dismissable)
	require.Len(t, d.Prompt.Actions, 1)
	assert.Equal(t, ProfileSetupPath, d.Prompt.Actions[0].Target)
	assert.Zero(t, residents.calls)
	assert.Equal(t, []State{StateChecking, StateBlockedPrompt}, states)
}

func TestEvaluate_ProfileRequiredWithResidentAllowed(t *testing.T) {
	residents := &countingResidents{}
	var states []State
	g := newGate(residents, WithObserver(func(route string, s State) { states = append(states, s) }))

	d := g.EvaluatePath(context.Background(), sessionFor(models.RoleResident, "5"), "/home")

	assert.Equal(t, StateAllowed, d.State)
	assert.Equal(t, 1, residents.calls)
	assert.Equal(t, []State{StateChecking, StateAllowed}, states)
	require.NotNil(t, d.Chain, "the resolved chain travels with the decision")
	assert.Equal(t, models.FlexibleID("5"), d.Chain.Resident.ID)
}

func TestEvaluate_ProfileResolutionFailureFailsClosed(t *testing.T) {
	residents := &countingResidents{err: errors.New("timeout")}
	d := newGate(residents).EvaluatePath(context.Background(), sessionFor(models.RoleResident, "5"), "/join-household")

	assert.Equal(t, StateBlockedPrompt, d.State)
	assert.Nil(t, d.Chain)
}

func TestEvaluate_CapabilityGated(t *testing.T) {
	g := newGate(&countingResidents{})

	d := g.EvaluatePath(context.Background(), sessionFor(models.RoleResident, ""), "/receipts")
	assert.Equal(t, StateRedirect, d.State)
	assert.Equal(t, DashboardPath, d.Target)

	d = g.EvaluatePath(context.Background(), sessionFor(models.RoleAccountant, ""), "/receipts/12")
	assert.Equal(t, StateAllowed, d.State)
}

func TestPolicyFor_LongestSegmentPrefix(t *testing.T) {
	g := New(nil, []Policy{
		{Path: "/admin", Roles: []models.Role{models.RoleAdmin}},
		{Path: "/admin/report", Roles: []models.Role{models.RoleGroupLeader}},
	})

	assert.Equal(t, "/admin/report", g.PolicyFor("/admin/report/export").Path)
	assert.Equal(t, "/admin", g.PolicyFor("/admin/users").Path)
	assert.Equal(t, "/", g.PolicyFor("/administrator").Path)
}

package linkage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"community-console-service/internal/domain/models"
	"community-console-service/pkg/logger"
)

type fakeResidents struct {
	calls int
	data  map[models.FlexibleID]*models.Resident
	err   error
}

func (f *fakeResidents) GetByID(ctx context.Context, token string, id models.FlexibleID) (*models.Resident, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.data[id]
	if !ok {
		return nil, errors.New("not found")
	}
	c := *r
	return &c, nil
}

type fakeHouseholds struct {
	calls int
	data  map[models.FlexibleID]*models.Household
	err   error
}

func (f *fakeHouseholds) GetByID(ctx context.Context, token string, id models.FlexibleID) (*models.Household, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	h, ok := f.data[id]
	if !ok {
		return nil, errors.New("not found")
	}
	c := *h
	return &c, nil
}

func fixtures() (*fakeResidents, *fakeHouseholds) {
	residents := &fakeResidents{data: map[models.FlexibleID]*models.Resident{
		"10": {ID: "10", FullName: "Le Van C", HouseholdID: "100"},
		"11": {ID: "11", FullName: "Pham Thi D"},
	}}
	households := &fakeHouseholds{data: map[models.FlexibleID]*models.Household{
		"100": {ID: "100", HouseholdNumber: "HK-100", HeadResidentID: "10",
			Members: []models.HouseholdMember{{ResidentID: "10", RelationToHead: "Chủ hộ"}}},
	}}
	return residents, households
}

func TestResolveChain_NoLinkedResidentMakesNoCalls(t *testing.T) {
	residents, households := fixtures()
	r := NewResolver(residents, households)

	chain := r.ResolveChain(context.Background(), "tok", &models.Identity{ID: "1", Role: models.RoleResident})

	assert.Nil(t, chain.Resident)
	assert.Nil(t, chain.Household)
	assert.Zero(t, residents.calls)
	assert.Zero(t, households.calls)
}

func TestResolveChain_NilIdentity(t *testing.T) {
	residents, households := fixtures()
	chain := NewResolver(residents, households).ResolveChain(context.Background(), "tok", nil)
	assert.False(t, chain.HasProfile())
	assert.Zero(t, residents.calls)
}

func TestResolveChain_Full(t *testing.T) {
	residents, households := fixtures()
	r := NewResolver(residents, households)

	chain := r.ResolveChain(context.Background(), "tok", &models.Identity{ID: "1", LinkedResidentID: "10"})

	require.NotNil(t, chain.Resident)
	require.NotNil(t, chain.Household)
	assert.Equal(t, "HK-100", chain.Household.HouseholdNumber)
}

func TestResolveChain_ResidentWithoutHousehold(t *testing.T) {
	residents, households := fixtures()
	chain := NewResolver(residents, households).ResolveChain(context.Background(), "tok", &models.Identity{LinkedResidentID: "11"})

	assert.True(t, chain.HasProfile())
	assert.Nil(t, chain.Household)
	assert.Zero(t, households.calls)
}

func TestResolveChain_ResidentFailure(t *testing.T) {
	residents, households := fixtures()
	residents.err = errors.New("network down")

	chain := NewResolver(residents, households).ResolveChain(context.Background(), "tok", &models.Identity{LinkedResidentID: "10"})

	assert.Equal(t, Chain{}, chain)
	assert.Zero(t, households.calls)
}

func TestResolveChain_HouseholdFailureKeepsResident(t *testing.T) {
	residents, households := fixtures()
	households.err = errors.New("502")

	chain := NewResolver(residents, households).ResolveChain(context.Background(), "tok", &models.Identity{LinkedResidentID: "10"})

	require.NotNil(t, chain.Resident)
	assert.Equal(t, models.FlexibleID("10"), chain.Resident.ID)
	assert.Nil(t, chain.Household)
}

func TestResolveChain_Idempotent(t *testing.T) {
	residents, households := fixtures()
	r := NewResolver(residents, households)
	identity := &models.Identity{ID: "1", LinkedResidentID: "10"}

	first := r.ResolveChain(context.Background(), "tok", identity)
	second := r.ResolveChain(context.Background(), "tok", identity)

	assert.Equal(t, first, second)
}

func TestResolveChain_InconsistentHouseholdLoggedAndKept(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	residents, households := fixtures()
	households.data["100"].Members = []models.HouseholdMember{{ResidentID: "12", RelationToHead: "Con"}}
	r := NewResolver(residents, households)

	chain := r.ResolveChain(context.Background(), "tok", &models.Identity{ID: "1", LinkedResidentID: "10"})

	require.NotNil(t, chain.Household)
	assert.Equal(t, "HK-100", chain.Household.HouseholdNumber)
	assert.Contains(t, buf.String(), "head 10 is not a member")
}

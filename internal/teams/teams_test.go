package teams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListOrder(t *testing.T) {
	repo := NewMemoryRepository()

	a, err := repo.Create("Alpha", "first")
	require.NoError(t, err)
	b, err := repo.Create("Bravo", "")
	require.NoError(t, err)

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)

	list := repo.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Bravo", list[1].Name)
}

func TestCreateRequiresName(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Create("   ", "desc")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestGetUnknownTeam(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Get(99)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestUpdatePartial(t *testing.T) {
	repo := NewMemoryRepository()
	team, _ := repo.Create("Alpha", "old")

	desc := "new description"
	updated, err := repo.Update(team.ID, nil, &desc)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", updated.Name, "nil name leaves the name alone")
	assert.Equal(t, "new description", updated.Description)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestDelete(t *testing.T) {
	repo := NewMemoryRepository()
	team, _ := repo.Create("Alpha", "")

	deleted, err := repo.Delete(team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, deleted.ID)

	_, err = repo.Get(team.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestAddMemberUniqueMLSID(t *testing.T) {
	repo := NewMemoryRepository()
	team, _ := repo.Create("Alpha", "")

	m1, _, err := repo.AddMember(team.ID, "Jane Agent", "MLS001", "555-0100")
	require.NoError(t, err)
	assert.Equal(t, 1, m1.ID)

	_, _, err = repo.AddMember(team.ID, "Someone Else", "MLS001", "")
	assert.ErrorIs(t, err, ErrMemberExists)

	m2, updated, err := repo.AddMember(team.ID, "John Agent", "MLS002", "")
	require.NoError(t, err)
	assert.Equal(t, 2, m2.ID)
	assert.Len(t, updated.Members, 2)
}

func TestRemoveMember(t *testing.T) {
	repo := NewMemoryRepository()
	team, _ := repo.Create("Alpha", "")
	m, _, _ := repo.AddMember(team.ID, "Jane Agent", "MLS001", "")

	removed, updated, err := repo.RemoveMember(team.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "MLS001", removed.AgentMLSID)
	assert.Empty(t, updated.Members)

	_, _, err = repo.RemoveMember(team.ID, m.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberIDsNotReusedAfterRemoval(t *testing.T) {
	repo := NewMemoryRepository()
	team, _ := repo.Create("Alpha", "")
	m1, _, _ := repo.AddMember(team.ID, "Jane Agent", "MLS001", "")
	m2, _, _ := repo.AddMember(team.ID, "John Agent", "MLS002", "")

	_, _, err := repo.RemoveMember(team.ID, m1.ID)
	require.NoError(t, err)

	m3, updated, err := repo.AddMember(team.ID, "Kate Agent", "MLS003", "")
	require.NoError(t, err)
	assert.NotEqual(t, m2.ID, m3.ID, "a removal must not cause duplicate member ids")

	seen := map[int]bool{}
	for _, m := range updated.Members {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
}

func TestListReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	team, _ := repo.Create("Alpha", "")
	_, _, _ = repo.AddMember(team.ID, "Jane Agent", "MLS001", "")

	list := repo.List()
	list[0].Members[0].AgentName = "mutated"

	fresh, _ := repo.Get(team.ID)
	assert.Equal(t, "Jane Agent", fresh.Members[0].AgentName)
}

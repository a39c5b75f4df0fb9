// Package teams is the in-memory team/member store. It lives behind a
// Repository interface so a database-backed implementation can replace it
// without touching handlers.
package teams

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrMemberNotFound = errors.New("member not found in team")
	ErrMemberExists   = errors.New("agent already in team")
	ErrNameRequired   = errors.New("team name is required")
)

type Member struct {
	ID           int       `json:"id"`
	AgentName    string    `json:"agent_name"`
	AgentMLSID   string    `json:"agent_mls_id"`
	AgentPhone   string    `json:"agent_phone"`
	AddedAt      time.Time `json:"added_at"`
}

type Team struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Members     []Member   `json:"members"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type Repository interface {
	List() []Team
	Create(name, description string) (Team, error)
	Get(id int) (Team, error)
	Update(id int, name, description *string) (Team, error)
	Delete(id int) (Team, error)
	AddMember(teamID int, name, mlsID, phone string) (Member, Team, error)
	RemoveMember(teamID, memberID int) (Member, Team, error)
}

type memoryRepo struct {
	mu     sync.Mutex
	teams  map[int]*Team
	nextID int
}

func NewMemoryRepository() Repository {
	return &memoryRepo{teams: make(map[int]*Team), nextID: 1}
}

func (r *memoryRepo) List() []Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, cloneTeam(t))
	}
	// insertion order, ids are monotonically increasing
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryRepo) Create(name, description string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, ErrNameRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &Team{
		ID:          r.nextID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Members:     []Member{},
		CreatedAt:   time.Now().UTC(),
	}
	r.nextID++
	r.teams[t.ID] = t
	return cloneTeam(t), nil
}

func (r *memoryRepo) Get(id int) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return Team{}, ErrTeamNotFound
	}
	return cloneTeam(t), nil
}

func (r *memoryRepo) Update(id int, name, description *string) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return Team{}, ErrTeamNotFound
	}
	if name != nil && strings.TrimSpace(*name) != "" {
		t.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		t.Description = strings.TrimSpace(*description)
	}
	now := time.Now().UTC()
	t.UpdatedAt = &now
	return cloneTeam(t), nil
}

func (r *memoryRepo) Delete(id int) (Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[id]
	if !ok {
		return Team{}, ErrTeamNotFound
	}
	delete(r.teams, id)
	return cloneTeam(t), nil
}

func (r *memoryRepo) AddMember(teamID int, name, mlsID, phone string) (Member, Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return Member{}, Team{}, ErrTeamNotFound
	}
	mlsID = strings.TrimSpace(mlsID)
	nextID := 1
	for _, m := range t.Members {
		if m.AgentMLSID == mlsID {
			return m, cloneTeam(t), ErrMemberExists
		}
		if m.ID >= nextID {
			nextID = m.ID + 1
		}
	}
	m := Member{
		ID:         nextID,
		AgentName:  strings.TrimSpace(name),
		AgentMLSID: mlsID,
		AgentPhone: strings.TrimSpace(phone),
		AddedAt:    time.Now().UTC(),
	}
	t.Members = append(t.Members, m)
	return m, cloneTeam(t), nil
}

func (r *memoryRepo) RemoveMember(teamID, memberID int) (Member, Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teams[teamID]
	if !ok {
		return Member{}, Team{}, ErrTeamNotFound
	}
	for i, m := range t.Members {
		if m.ID == memberID {
			t.Members = append(t.Members[:i], t.Members[i+1:]...)
			return m, cloneTeam(t), nil
		}
	}
	return Member{}, Team{}, ErrMemberNotFound
}

func cloneTeam(t *Team) Team {
	out := *t
	out.Members = append([]Member(nil), t.Members...)
	return out
}

// Package repotest provides an in-memory project store for tests of the
// layers above the repositories.
package repotest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"dbdesigner/internal/models"
	"dbdesigner/internal/repositories"
)

// ProjectStore mirrors ProjectRepository's behaviour: names are unique per
// user, lookups are scoped to the owner and every write bumps UpdatedAt.
type ProjectStore struct {
	mu       sync.Mutex
	projects map[uuid.UUID]models.Project

	// Err, when set, is returned by every call.
	Err error
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{projects: map[uuid.UUID]models.Project{}}
}

func (s *ProjectStore) Create(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.projects {
		if existing.UserID == p.UserID && existing.Name == p.Name {
			return repositories.ErrDuplicateName
		}
	}
	p.Prepare()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = copyProject(*p)
	return nil
}

func (s *ProjectStore) GetByIDAndUserID(_ context.Context, id, userID uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	out := copyProject(p)
	return &out, nil
}

func (s *ProjectStore) ListByUserID(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Project{}
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, copyProject(p))
		}
	}
	return out, nil
}

func (s *ProjectStore) Update(_ context.Context, p *models.Project) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	existing, ok := s.projects[p.ID]
	if !ok || existing.UserID != p.UserID {
		return false, nil
	}
	for id, other := range s.projects {
		if id != p.ID && other.UserID == p.UserID && other.Name == p.Name {
			return false, repositories.ErrDuplicateName
		}
	}
	// Strictly increasing so export cache keys change on every write.
	p.UpdatedAt = time.Now().UTC()
	if !p.UpdatedAt.After(existing.UpdatedAt) {
		p.UpdatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}
	s.projects[p.ID] = copyProject(*p)
	return true, nil
}

func (s *ProjectStore) DeleteByIDAndUserID(_ context.Context, id, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}

// copyProject round-trips the design through JSON the way the JSONB column
// does, so callers never share memory with the store.
func copyProject(p models.Project) models.Project {
	data, err := json.Marshal(p.Design)
	if err != nil {
		panic(err)
	}
	var d models.Design
	if err := json.Unmarshal(data, &d); err != nil {
		panic(err)
	}
	p.Design = d
	return p
}

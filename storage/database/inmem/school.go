package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(_ context.Context, s school.School, _ ...core.DBExecutor) (school.School, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = newID()
	repo.db.schools[s.ID] = s
	return s, nil
}

func (repo *schoolRepository) GetSchool(_ context.Context, id string, _ ...core.DBExecutor) (school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.schools[id]; ok {
		return s, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) QuerySchools(_ context.Context, _ ...core.DBExecutor) ([]school.School, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	list := make([]school.School, 0, len(repo.db.schools))
	for _, s := range repo.db.schools {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

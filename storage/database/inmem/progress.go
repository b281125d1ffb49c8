package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/progress"
)

type progressRepository struct {
	db *DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db}
}

func progressKey(studentID, contentItemID string) string {
	return studentID + ":" + contentItemID
}

func (repo *progressRepository) UpsertProgress(_ context.Context, p progress.Progress, _ ...core.DBExecutor) (progress.Progress, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := progressKey(p.StudentID, p.ContentItemID)
	if existing, ok := repo.db.progress[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		p.ID = newID()
	}
	repo.db.progress[key] = p
	return p, nil
}

func (repo *progressRepository) GetProgress(_ context.Context, studentID, contentItemID string, _ ...core.DBExecutor) (progress.Progress, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.progress[progressKey(studentID, contentItemID)]; ok {
		return p, nil
	}
	return progress.Progress{}, progress.ErrNotFound
}

func (repo *progressRepository) QueryProgress(_ context.Context, studentID string, _ ...core.DBExecutor) ([]progress.Progress, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]progress.Progress, 0)
	for _, p := range repo.db.progress {
		if p.StudentID == studentID {
			records = append(records, p)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].LastAccessedAt.After(records[j].LastAccessedAt) })
	return records, nil
}

func (repo *progressRepository) QueryProgressForStudents(_ context.Context, studentIDs []string, _ ...core.DBExecutor) ([]progress.Progress, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	wanted := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}
	records := make([]progress.Progress, 0)
	for _, p := range repo.db.progress {
		if wanted[p.StudentID] {
			records = append(records, p)
		}
	}
	return records, nil
}

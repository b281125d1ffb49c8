package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment, _ ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a.ID = newID()
	repo.db.assignments[a.ID] = a
	return a, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id string, _ ...core.DBExecutor) (assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignments(_ context.Context, filter assignment.Filter, _ ...core.DBExecutor) ([]assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	list := make([]assignment.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if (filter.TeacherID != "" && a.TeacherID != filter.TeacherID) ||
			(filter.SchoolID != "" && a.SchoolID != filter.SchoolID) ||
			(filter.ClassName != "" && a.ClassName != filter.ClassName) {
			continue
		}
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (repo *assignmentRepository) UpsertSubmission(_ context.Context, sub assignment.Submission, _ ...core.DBExecutor) (assignment.Submission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sub.ID = ""
	for id, existing := range repo.db.submissions {
		if existing.AssignmentID == sub.AssignmentID && existing.StudentID == sub.StudentID {
			sub.ID = id
			break
		}
	}
	if sub.ID == "" {
		sub.ID = newID()
	}
	repo.db.submissions[sub.ID] = sub
	return sub, nil
}

func (repo *assignmentRepository) GetSubmission(_ context.Context, id string, _ ...core.DBExecutor) (assignment.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return sub, nil
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) UpdateSubmission(_ context.Context, sub assignment.Submission, _ ...core.DBExecutor) (assignment.Submission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.submissions[sub.ID]; !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	repo.db.submissions[sub.ID] = sub
	return sub, nil
}

func (repo *assignmentRepository) QuerySubmissions(_ context.Context, filter assignment.SubmissionFilter, _ ...core.DBExecutor) ([]assignment.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subs := make([]assignment.Submission, 0)
	for _, sub := range repo.db.submissions {
		if filter.AssignmentID != "" && sub.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && sub.StudentID != filter.StudentID {
			continue
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.Before(subs[j].SubmittedAt) })
	return subs, nil
}

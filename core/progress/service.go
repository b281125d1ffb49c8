package progress

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/user"
)

var ErrNotFound = errors.New("progress not found")

type (
	Repository interface {
		// UpsertProgress inserts or replaces the record keyed on (StudentID, ContentItemID).
		UpsertProgress(ctx context.Context, p Progress, exec ...core.DBExecutor) (Progress, error)
		GetProgress(ctx context.Context, studentID, contentItemID string, exec ...core.DBExecutor) (Progress, error)
		// QueryProgress returns a student's records, most recently accessed first.
		QueryProgress(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]Progress, error)
		// QueryProgressForStudents returns the records of every listed student, in no particular order.
		QueryProgressForStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) ([]Progress, error)
	}

	Service interface {
		Record(ctx context.Context, studentID string, np NewProgress) (Progress, error)
		ForStudent(ctx context.Context, studentID string) ([]Progress, error)
		ForClass(ctx context.Context, schoolID, className string, roster []user.User) (ClassSummary, error)
	}

	service struct {
		repo Repository
	}
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Record(ctx context.Context, studentID string, np NewProgress) (Progress, error) {
	if err := np.Validate(); err != nil {
		return Progress{}, err
	}

	now := core.NowFunc()
	p := Progress{
		StudentID:          studentID,
		ContentItemID:      np.ContentItemID,
		ProgressPercentage: np.ProgressPercentage,
		Score:              np.Score,
		TimeSpent:          np.TimeSpent,
		CompletedAt:        np.CompletedAt,
		LastAccessedAt:     np.LastAccessedAt.UTC(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if np.LastAccessedAt.IsZero() {
		p.LastAccessedAt = now
	}
	if p.CompletedAt == nil && p.ProgressPercentage == 100 {
		p.CompletedAt = &p.LastAccessedAt
	}
	return svc.repo.UpsertProgress(ctx, p)
}

func (svc *service) ForStudent(ctx context.Context, studentID string) ([]Progress, error) {
	return svc.repo.QueryProgress(ctx, core.CleanString(studentID))
}

func (svc *service) ForClass(ctx context.Context, schoolID, className string, roster []user.User) (ClassSummary, error) {
	ids := make([]string, 0, len(roster))
	for _, usr := range roster {
		ids = append(ids, usr.ID)
	}
	records := make([]Progress, 0)
	if len(ids) > 0 {
		var err error
		if records, err = svc.repo.QueryProgressForStudents(ctx, ids); err != nil {
			return ClassSummary{}, errors.Wrap(err, "querying class progress")
		}
	}
	return SummarizeClass(schoolID, className, roster, records), nil
}

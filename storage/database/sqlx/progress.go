package sqlxrepos

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/progress"
)

var progressColumns = []string{
	"id", "student_id", "content_item_id", "progress_percentage", "score", "time_spent",
	"completed_at", "last_accessed_at", "created_at", "updated_at",
}

// upsertSuffix keeps id and created_at of the existing row and replaces the given columns.
func upsertSuffix(conflict []string, replace []string, returning []string) string {
	sets := make([]string, 0, len(replace))
	for _, col := range replace {
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	return "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ") +
		" RETURNING " + strings.Join(returning, ", ")
}

type progressRepository struct {
	repo
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(exec core.DBExecutor) progress.Repository {
	return &progressRepository{repo{exec: exec}}
}

func (pr progressRepository) UpsertProgress(ctx context.Context, p progress.Progress, exec ...core.DBExecutor) (progress.Progress, error) {
	q := psql.Insert("student_progress").Columns(progressColumns...).Values(
		newID(), p.StudentID, p.ContentItemID, p.ProgressPercentage, p.Score, p.TimeSpent,
		p.CompletedAt, p.LastAccessedAt.UTC(), p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	).Suffix(upsertSuffix(
		[]string{"student_id", "content_item_id"},
		[]string{"progress_percentage", "score", "time_spent", "completed_at", "last_accessed_at", "updated_at"},
		progressColumns,
	))

	var saved progress.Progress
	if err := pr.get(ctx, exec, &saved, q); err != nil {
		return progress.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return saved, nil
}

func (pr progressRepository) GetProgress(ctx context.Context, studentID, contentItemID string, exec ...core.DBExecutor) (progress.Progress, error) {
	if !validID(studentID) {
		return progress.Progress{}, progress.ErrNotFound
	}
	var p progress.Progress
	q := psql.Select(progressColumns...).From("student_progress").
		Where(sq.Eq{"student_id": studentID, "content_item_id": contentItemID})
	if err := pr.get(ctx, exec, &p, q); err != nil {
		return progress.Progress{}, trapNoRowsErr(err, progress.ErrNotFound, "finding progress")
	}
	return p, nil
}

func (pr progressRepository) QueryProgress(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]progress.Progress, error) {
	records := make([]progress.Progress, 0)
	if !validID(studentID) {
		return records, nil
	}
	q := psql.Select(progressColumns...).From("student_progress").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("last_accessed_at DESC")
	if err := pr.selectAll(ctx, exec, &records, q); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	return records, nil
}

func (pr progressRepository) QueryProgressForStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) ([]progress.Progress, error) {
	records := make([]progress.Progress, 0)
	ids := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		if validID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return records, nil
	}
	q := psql.Select(progressColumns...).From("student_progress").Where(sq.Eq{"student_id": ids})
	if err := pr.selectAll(ctx, exec, &records, q); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	return records, nil
}

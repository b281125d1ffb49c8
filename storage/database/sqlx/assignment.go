package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/assignment"
)

var (
	assignmentColumns = []string{"id", "teacher_id", "content_item_id", "title", "description", "due_date", "school_id", "class_name", "created_at"}
	submissionColumns = []string{"id", "assignment_id", "student_id", "answers", "score", "feedback", "status", "submitted_at"}
)

type assignmentRepository struct {
	repo
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) assignment.Repository {
	return &assignmentRepository{repo{exec: exec}}
}

func (ar assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment, exec ...core.DBExecutor) (assignment.Assignment, error) {
	a.ID = newID()
	a.CreatedAt = a.CreatedAt.UTC()
	q := psql.Insert("assignment").Columns(assignmentColumns...).
		Values(a.ID, a.TeacherID, a.ContentItemID, a.Title, a.Description, a.DueDate, a.SchoolID, a.ClassName, a.CreatedAt)
	if _, err := ar.execute(ctx, exec, q); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (ar assignmentRepository) GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.Assignment, error) {
	if !validID(id) {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	var a assignment.Assignment
	q := psql.Select(assignmentColumns...).From("assignment").Where(sq.Eq{"id": id})
	if err := ar.get(ctx, exec, &a, q); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "finding assignment")
	}
	return a, nil
}

func (ar assignmentRepository) QueryAssignments(ctx context.Context, filter assignment.Filter, exec ...core.DBExecutor) ([]assignment.Assignment, error) {
	list := make([]assignment.Assignment, 0)
	q := psql.Select(assignmentColumns...).From("assignment").OrderBy("created_at DESC")
	if filter.TeacherID != "" {
		if !validID(filter.TeacherID) {
			return list, nil
		}
		q = q.Where(sq.Eq{"teacher_id": filter.TeacherID})
	}
	if filter.SchoolID != "" {
		q = q.Where(sq.Eq{"school_id": filter.SchoolID})
	}
	if filter.ClassName != "" {
		q = q.Where(sq.Eq{"class_name": filter.ClassName})
	}
	if err := ar.selectAll(ctx, exec, &list, q); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return list, nil
}

func (ar assignmentRepository) UpsertSubmission(ctx context.Context, sub assignment.Submission, exec ...core.DBExecutor) (assignment.Submission, error) {
	q := psql.Insert("assignment_submission").Columns(submissionColumns...).Values(
		newID(), sub.AssignmentID, sub.StudentID, sub.Answers, sub.Score, sub.Feedback, sub.Status, sub.SubmittedAt.UTC(),
	).Suffix(upsertSuffix(
		[]string{"assignment_id", "student_id"},
		[]string{"answers", "score", "feedback", "status", "submitted_at"},
		submissionColumns,
	))

	var saved assignment.Submission
	if err := ar.get(ctx, exec, &saved, q); err != nil {
		return assignment.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return saved, nil
}

func (ar assignmentRepository) GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (assignment.Submission, error) {
	if !validID(id) {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	var sub assignment.Submission
	q := psql.Select(submissionColumns...).From("assignment_submission").Where(sq.Eq{"id": id})
	if err := ar.get(ctx, exec, &sub, q); err != nil {
		return assignment.Submission{}, trapNoRowsErr(err, assignment.ErrSubmissionNotFound, "finding submission")
	}
	return sub, nil
}

func (ar assignmentRepository) UpdateSubmission(ctx context.Context, sub assignment.Submission, exec ...core.DBExecutor) (assignment.Submission, error) {
	q := psql.Update("assignment_submission").SetMap(map[string]interface{}{
		"answers":  sub.Answers,
		"score":    sub.Score,
		"feedback": sub.Feedback,
		"status":   sub.Status,
	}).Where(sq.Eq{"id": sub.ID})

	n, err := ar.execute(ctx, exec, q)
	if err != nil {
		return assignment.Submission{}, errors.Wrap(err, "updating submission")
	}
	if n == 0 {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	return sub, nil
}

func (ar assignmentRepository) QuerySubmissions(ctx context.Context, filter assignment.SubmissionFilter, exec ...core.DBExecutor) ([]assignment.Submission, error) {
	subs := make([]assignment.Submission, 0)
	q := psql.Select(submissionColumns...).From("assignment_submission").OrderBy("submitted_at ASC")
	for col, id := range map[string]string{"assignment_id": filter.AssignmentID, "student_id": filter.StudentID} {
		if id == "" {
			continue
		}
		if !validID(id) {
			return subs, nil
		}
		q = q.Where(sq.Eq{col: id})
	}
	if err := ar.selectAll(ctx, exec, &subs, q); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}

package assignment

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

var (
	ErrNotFound           = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)

type (
	// Filter narrows assignment lists; empty fields match everything.
	Filter struct {
		TeacherID string
		SchoolID  string
		ClassName string
	}

	SubmissionFilter struct {
		AssignmentID string
		StudentID    string
	}

	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment, exec ...core.DBExecutor) (Assignment, error)
		GetAssignment(ctx context.Context, id string, exec ...core.DBExecutor) (Assignment, error)
		// QueryAssignments returns matching assignments, newest first.
		QueryAssignments(ctx context.Context, filter Filter, exec ...core.DBExecutor) ([]Assignment, error)
		// UpsertSubmission inserts or replaces the submission keyed on (AssignmentID, StudentID).
		UpsertSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		GetSubmission(ctx context.Context, id string, exec ...core.DBExecutor) (Submission, error)
		UpdateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		QuerySubmissions(ctx context.Context, filter SubmissionFilter, exec ...core.DBExecutor) ([]Submission, error)
	}

	Service interface {
		Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error)
		Get(ctx context.Context, id string) (Assignment, error)
		List(ctx context.Context, filter Filter) ([]Assignment, error)
		Submit(ctx context.Context, studentID string, ns NewSubmission) (Submission, error)
		Submissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error)
		GradeSubmission(ctx context.Context, id string, g Grade) (Submission, error)
	}

	service struct {
		repo Repository
	}
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, teacherID string, na NewAssignment) (Assignment, error) {
	if err := na.Validate(); err != nil {
		return Assignment{}, err
	}
	return svc.repo.CreateAssignment(ctx, Assignment{
		TeacherID:     teacherID,
		ContentItemID: na.ContentItemID,
		Title:         na.Title,
		Description:   na.Description,
		DueDate:       na.DueDate,
		SchoolID:      na.SchoolID,
		ClassName:     na.ClassName,
		CreatedAt:     core.NowFunc(),
	})
}

func (svc *service) Get(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, core.CleanString(id))
}

func (svc *service) List(ctx context.Context, filter Filter) ([]Assignment, error) {
	filter.TeacherID = core.CleanString(filter.TeacherID)
	filter.SchoolID = core.CleanString(filter.SchoolID)
	filter.ClassName = core.CleanString(filter.ClassName)
	return svc.repo.QueryAssignments(ctx, filter)
}

func (svc *service) Submit(ctx context.Context, studentID string, ns NewSubmission) (Submission, error) {
	if err := ns.Validate(); err != nil {
		return Submission{}, err
	}
	if _, err := svc.repo.GetAssignment(ctx, ns.AssignmentID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Submission{}, core.NewFieldError("assignment_id", err)
		}
		return Submission{}, err
	}

	sub := Submission{
		AssignmentID: ns.AssignmentID,
		StudentID:    studentID,
		Answers:      ns.Answers,
		Status:       StatusSubmitted,
		SubmittedAt:  ns.SubmittedAt.UTC(),
	}
	if ns.SubmittedAt.IsZero() {
		sub.SubmittedAt = core.NowFunc()
	}
	return svc.repo.UpsertSubmission(ctx, sub)
}

func (svc *service) Submissions(ctx context.Context, filter SubmissionFilter) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, filter)
}

func (svc *service) GradeSubmission(ctx context.Context, id string, g Grade) (Submission, error) {
	if err := g.Validate(); err != nil {
		return Submission{}, err
	}
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, err
	}
	sub.Score = &g.Score
	sub.Feedback = g.Feedback
	sub.Status = StatusGraded
	return svc.repo.UpdateSubmission(ctx, sub)
}

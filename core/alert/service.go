package alert

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/user"
)

var ErrNotFound = errors.New("alert not found")

type (
	Repository interface {
		CreateAlert(ctx context.Context, a Alert, exec ...core.DBExecutor) (Alert, error)
		GetAlert(ctx context.Context, id string, exec ...core.DBExecutor) (Alert, error)
		// QueryAlerts returns alerts with the given status (any when empty), newest first.
		QueryAlerts(ctx context.Context, status string, exec ...core.DBExecutor) ([]Alert, error)
		UpdateAlert(ctx context.Context, a Alert, exec ...core.DBExecutor) (Alert, error)
	}

	Service interface {
		// Raise records an active alert and notifies every active teacher by email.
		Raise(ctx context.Context, student user.User, na NewAlert) (Alert, error)
		Active(ctx context.Context) ([]Alert, error)
		Resolve(ctx context.Context, id string, by user.User) (Alert, error)
	}

	service struct {
		repo      Repository
		usrRepo   user.Repository
		mailSvc   core.EmailService
		logger    core.Logger
		fallbacks []string
	}
)

// NewService returns the alert Service. `fallbacks` receive alerts when no active teacher has an email.
func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, logger core.Logger, fallbacks ...string) Service {
	return &service{
		repo:      repo,
		usrRepo:   usrRepo,
		mailSvc:   mailSvc,
		logger:    logger,
		fallbacks: fallbacks,
	}
}

func (svc *service) Raise(ctx context.Context, student user.User, na NewAlert) (Alert, error) {
	if err := na.Validate(); err != nil {
		return Alert{}, err
	}
	a, err := svc.repo.CreateAlert(ctx, Alert{
		StudentID: student.ID,
		Message:   na.Message,
		Status:    StatusActive,
		CreatedAt: core.NowFunc(),
	})
	if err != nil {
		return Alert{}, err
	}

	if err := svc.notifyTeachers(ctx, student, a); err != nil {
		// the alert is recorded; teachers still see it on their dashboard
		svc.logger.Error("notifying teachers", err, map[string]interface{}{"alert_id": a.ID})
	}
	return a, nil
}

func (svc *service) recipients(ctx context.Context) ([]mail.Address, error) {
	active := true
	teachers, err := svc.usrRepo.QueryUsers(ctx, &user.QueryFilter{Roles: user.TeacherRoles, IsActive: &active}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}

	to := make([]mail.Address, 0, len(teachers))
	for _, t := range teachers {
		if t.Email != "" {
			to = append(to, mail.Address{Name: t.Name, Address: t.Email})
		}
	}
	if len(to) == 0 {
		for _, addr := range svc.fallbacks {
			to = append(to, mail.Address{Address: addr})
		}
	}
	return to, nil
}

func (svc *service) notifyTeachers(ctx context.Context, student user.User, a Alert) error {
	to, err := svc.recipients(ctx)
	if err != nil {
		return err
	}
	if len(to) == 0 {
		return nil
	}

	name := student.Name
	if name == "" {
		name = student.Username
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      "Emergency alert: " + name,
		TemplateName: "emergency_alert",
		TemplateData: emailData{StudentName: name, Message: a.Message, CreatedAt: a.CreatedAt},
	})
	return nil
}

func (svc *service) Active(ctx context.Context) ([]Alert, error) {
	return svc.repo.QueryAlerts(ctx, StatusActive)
}

func (svc *service) Resolve(ctx context.Context, id string, by user.User) (Alert, error) {
	a, err := svc.repo.GetAlert(ctx, core.CleanString(id))
	if err != nil {
		return Alert{}, err
	}
	if a.Status == StatusResolved {
		return a, nil
	}

	now := core.NowFunc()
	a.Status = StatusResolved
	a.ResolvedAt = &now
	a.ResolvedBy = &by.ID
	return svc.repo.UpdateAlert(ctx, a)
}

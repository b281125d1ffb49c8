package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/alert"
)

var alertColumns = []string{"id", "student_id", "resolved_by", "message", "status", "created_at", "resolved_at"}

type alertRepository struct {
	repo
}

var _ alert.Repository = (*alertRepository)(nil) // interface compliance check

func NewAlertRepository(exec core.DBExecutor) alert.Repository {
	return &alertRepository{repo{exec: exec}}
}

func (ar alertRepository) CreateAlert(ctx context.Context, a alert.Alert, exec ...core.DBExecutor) (alert.Alert, error) {
	a.ID = newID()
	a.CreatedAt = a.CreatedAt.UTC()
	q := psql.Insert("emergency_alert").Columns(alertColumns...).
		Values(a.ID, a.StudentID, a.ResolvedBy, a.Message, a.Status, a.CreatedAt, a.ResolvedAt)
	if _, err := ar.execute(ctx, exec, q); err != nil {
		return alert.Alert{}, errors.Wrap(err, "inserting alert")
	}
	return a, nil
}

func (ar alertRepository) GetAlert(ctx context.Context, id string, exec ...core.DBExecutor) (alert.Alert, error) {
	if !validID(id) {
		return alert.Alert{}, alert.ErrNotFound
	}
	var a alert.Alert
	q := psql.Select(alertColumns...).From("emergency_alert").Where(sq.Eq{"id": id})
	if err := ar.get(ctx, exec, &a, q); err != nil {
		return alert.Alert{}, trapNoRowsErr(err, alert.ErrNotFound, "finding alert")
	}
	return a, nil
}

func (ar alertRepository) QueryAlerts(ctx context.Context, status string, exec ...core.DBExecutor) ([]alert.Alert, error) {
	alerts := make([]alert.Alert, 0)
	q := psql.Select(alertColumns...).From("emergency_alert").OrderBy("created_at DESC")
	if status != "" {
		q = q.Where(sq.Eq{"status": status})
	}
	if err := ar.selectAll(ctx, exec, &alerts, q); err != nil {
		return nil, errors.Wrap(err, "querying alerts")
	}
	return alerts, nil
}

func (ar alertRepository) UpdateAlert(ctx context.Context, a alert.Alert, exec ...core.DBExecutor) (alert.Alert, error) {
	q := psql.Update("emergency_alert").SetMap(map[string]interface{}{
		"status":      a.Status,
		"resolved_by": a.ResolvedBy,
		"resolved_at": a.ResolvedAt,
	}).Where(sq.Eq{"id": a.ID})

	n, err := ar.execute(ctx, exec, q)
	if err != nil {
		return alert.Alert{}, errors.Wrap(err, "updating alert")
	}
	if n == 0 {
		return alert.Alert{}, alert.ErrNotFound
	}
	return a, nil
}

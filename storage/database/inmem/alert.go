package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/alert"
)

type alertRepository struct {
	db *DB
}

var _ alert.Repository = (*alertRepository)(nil) // interface compliance check

func NewAlertRepository(db *DB) alert.Repository {
	return &alertRepository{db: db}
}

func (repo *alertRepository) CreateAlert(_ context.Context, a alert.Alert, _ ...core.DBExecutor) (alert.Alert, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a.ID = newID()
	repo.db.alerts[a.ID] = a
	return a, nil
}

func (repo *alertRepository) GetAlert(_ context.Context, id string, _ ...core.DBExecutor) (alert.Alert, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if a, ok := repo.db.alerts[id]; ok {
		return a, nil
	}
	return alert.Alert{}, alert.ErrNotFound
}

func (repo *alertRepository) QueryAlerts(_ context.Context, status string, _ ...core.DBExecutor) ([]alert.Alert, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	alerts := make([]alert.Alert, 0)
	for _, a := range repo.db.alerts {
		if status == "" || a.Status == status {
			alerts = append(alerts, a)
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].CreatedAt.After(alerts[j].CreatedAt) })
	return alerts, nil
}

func (repo *alertRepository) UpdateAlert(_ context.Context, a alert.Alert, _ ...core.DBExecutor) (alert.Alert, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.alerts[a.ID]; !ok {
		return alert.Alert{}, alert.ErrNotFound
	}
	repo.db.alerts[a.ID] = a
	return a, nil
}

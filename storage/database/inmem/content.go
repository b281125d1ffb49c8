package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/content"
)

type contentRepository struct {
	db *DB
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) content.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateCategory(_ context.Context, cat content.Category, _ ...core.DBExecutor) (content.Category, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cat.ID = newID()
	repo.db.categories[cat.ID] = cat
	return cat, nil
}

func (repo *contentRepository) GetCategory(_ context.Context, id string, _ ...core.DBExecutor) (content.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return cat, nil
	}
	return content.Category{}, content.ErrCategoryNotFound
}

func (repo *contentRepository) QueryCategories(_ context.Context, _ ...core.DBExecutor) ([]content.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cats := make([]content.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].GradeLevel != cats[j].GradeLevel {
			return cats[i].GradeLevel < cats[j].GradeLevel
		}
		return cats[i].Subject < cats[j].Subject
	})
	return cats, nil
}

func (repo *contentRepository) CreateItem(_ context.Context, item content.Item, _ ...core.DBExecutor) (content.Item, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	item.ID = newID()
	repo.db.items[item.ID] = item
	return item, nil
}

func (repo *contentRepository) GetItem(_ context.Context, id string, _ ...core.DBExecutor) (content.Item, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if item, ok := repo.db.items[id]; ok {
		return item, nil
	}
	return content.Item{}, content.ErrNotFound
}

func (repo *contentRepository) QueryItems(_ context.Context, filter content.QueryFilter, _ ...core.DBExecutor) ([]content.Item, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	items := make([]content.Item, 0)
	for _, item := range repo.db.items {
		if filter.CategoryID != "" && item.CategoryID != filter.CategoryID {
			continue
		}
		if filter.OfflineOnly && !item.IsOfflineAvailable {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

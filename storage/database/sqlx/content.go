package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/content"
)

var (
	categoryColumns = []string{"id", "name", "description", "subject", "grade_level", "created_at"}
	itemColumns     = []string{
		"id", "category_id", "type", "title", "description", "body", "difficulty", "estimated_duration",
		"is_offline_available", "has_audio", "has_captions", "status", "created_at", "updated_at",
	}
)

type contentRepository struct {
	repo
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(exec core.DBExecutor) content.Repository {
	return &contentRepository{repo{exec: exec}}
}

func (cr contentRepository) CreateCategory(ctx context.Context, cat content.Category, exec ...core.DBExecutor) (content.Category, error) {
	cat.ID = newID()
	cat.CreatedAt = cat.CreatedAt.UTC()
	q := psql.Insert("content_category").Columns(categoryColumns...).
		Values(cat.ID, cat.Name, cat.Description, cat.Subject, cat.GradeLevel, cat.CreatedAt)
	if _, err := cr.execute(ctx, exec, q); err != nil {
		return content.Category{}, errors.Wrap(err, "inserting category")
	}
	return cat, nil
}

func (cr contentRepository) GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (content.Category, error) {
	if !validID(id) {
		return content.Category{}, content.ErrCategoryNotFound
	}
	var cat content.Category
	q := psql.Select(categoryColumns...).From("content_category").Where(sq.Eq{"id": id})
	if err := cr.get(ctx, exec, &cat, q); err != nil {
		return content.Category{}, trapNoRowsErr(err, content.ErrCategoryNotFound, "finding category")
	}
	return cat, nil
}

func (cr contentRepository) QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]content.Category, error) {
	cats := make([]content.Category, 0)
	q := psql.Select(categoryColumns...).From("content_category").OrderBy("grade_level ASC", "subject ASC")
	if err := cr.selectAll(ctx, exec, &cats, q); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	return cats, nil
}

func (cr contentRepository) CreateItem(ctx context.Context, item content.Item, exec ...core.DBExecutor) (content.Item, error) {
	item.ID = newID()
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	q := psql.Insert("content_item").Columns(itemColumns...).Values(
		item.ID, item.CategoryID, item.Type, item.Title, item.Description, item.Body, item.Difficulty,
		item.EstimatedDuration, item.IsOfflineAvailable, item.HasAudio, item.HasCaptions, item.Status,
		item.CreatedAt, item.UpdatedAt,
	)
	if _, err := cr.execute(ctx, exec, q); err != nil {
		return content.Item{}, errors.Wrap(err, "inserting content item")
	}
	return item, nil
}

func (cr contentRepository) GetItem(ctx context.Context, id string, exec ...core.DBExecutor) (content.Item, error) {
	if !validID(id) {
		return content.Item{}, content.ErrNotFound
	}
	var item content.Item
	q := psql.Select(itemColumns...).From("content_item").Where(sq.Eq{"id": id})
	if err := cr.get(ctx, exec, &item, q); err != nil {
		return content.Item{}, trapNoRowsErr(err, content.ErrNotFound, "finding content item")
	}
	return item, nil
}

func (cr contentRepository) QueryItems(ctx context.Context, filter content.QueryFilter, exec ...core.DBExecutor) ([]content.Item, error) {
	q := psql.Select(itemColumns...).From("content_item").OrderBy("id ASC")
	if filter.CategoryID != "" {
		if !validID(filter.CategoryID) {
			return []content.Item{}, nil
		}
		q = q.Where(sq.Eq{"category_id": filter.CategoryID})
	}
	if filter.OfflineOnly {
		q = q.Where(sq.Eq{"is_offline_available": true})
	}
	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}

	items := make([]content.Item, 0)
	if err := cr.selectAll(ctx, exec, &items, q); err != nil {
		return nil, errors.Wrap(err, "querying content items")
	}
	return items, nil
}

package content

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

var (
	ErrNotFound         = errors.New("content not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat Category, exec ...core.DBExecutor) (Category, error)
		GetCategory(ctx context.Context, id string, exec ...core.DBExecutor) (Category, error)
		QueryCategories(ctx context.Context, exec ...core.DBExecutor) ([]Category, error)
		CreateItem(ctx context.Context, item Item, exec ...core.DBExecutor) (Item, error)
		GetItem(ctx context.Context, id string, exec ...core.DBExecutor) (Item, error)
		// QueryItems returns items ordered by ID.
		QueryItems(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Item, error)
	}

	Service interface {
		CreateCategory(ctx context.Context, nc NewCategory) (Category, error)
		Categories(ctx context.Context) ([]Category, error)
		CreateItem(ctx context.Context, ni NewItem) (Item, error)
		Get(ctx context.Context, id string) (Item, error)
		// List only returns published items.
		List(ctx context.Context, filter QueryFilter) ([]Item, error)
	}

	service struct {
		repo Repository
	}
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	if err := nc.Validate(); err != nil {
		return Category{}, err
	}
	return svc.repo.CreateCategory(ctx, Category{
		Name:        nc.Name,
		Description: nc.Description,
		Subject:     nc.Subject,
		GradeLevel:  nc.GradeLevel,
		CreatedAt:   core.NowFunc(),
	})
}

func (svc *service) Categories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *service) CreateItem(ctx context.Context, ni NewItem) (Item, error) {
	if err := ni.Validate(); err != nil {
		return Item{}, err
	}
	if _, err := svc.repo.GetCategory(ctx, ni.CategoryID); err != nil {
		if errors.Cause(err) == ErrCategoryNotFound {
			return Item{}, core.NewFieldError("category_id", err)
		}
		return Item{}, err
	}

	now := core.NowFunc()
	return svc.repo.CreateItem(ctx, Item{
		CategoryID:         ni.CategoryID,
		Type:               ni.Type,
		Title:              ni.Title,
		Description:        ni.Description,
		Body:               ni.Body,
		Difficulty:         ni.Difficulty,
		EstimatedDuration:  ni.EstimatedDuration,
		IsOfflineAvailable: ni.IsOfflineAvailable,
		HasAudio:           ni.HasAudio,
		HasCaptions:        ni.HasCaptions,
		Status:             ni.Status,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

func (svc *service) Get(ctx context.Context, id string) (Item, error) {
	return svc.repo.GetItem(ctx, core.CleanString(id))
}

func (svc *service) List(ctx context.Context, filter QueryFilter) ([]Item, error) {
	filter.CategoryID = core.CleanString(filter.CategoryID)
	filter.Status = StatusPublished
	return svc.repo.QueryItems(ctx, filter)
}

package school

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
)

var ErrNotFound = errors.New("school not found")

type (
	Repository interface {
		CreateSchool(ctx context.Context, s School, exec ...core.DBExecutor) (School, error)
		GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (School, error)
		// QuerySchools returns every school ordered by name.
		QuerySchools(ctx context.Context, exec ...core.DBExecutor) ([]School, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewSchool) (School, error)
		Get(ctx context.Context, id string) (School, error)
		List(ctx context.Context) ([]School, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewSchool) (School, error) {
	if err := ns.Validate(); err != nil {
		return School{}, err
	}
	return svc.repo.CreateSchool(ctx, School{
		Name:          ns.Name,
		Location:      ns.Location,
		ContactNumber: ns.ContactNumber,
		Status:        StatusActive,
		CreatedAt:     core.NowFunc(),
	})
}

func (svc *service) Get(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchool(ctx, core.CleanString(id))
}

func (svc *service) List(ctx context.Context) ([]School, error) {
	return svc.repo.QuerySchools(ctx)
}

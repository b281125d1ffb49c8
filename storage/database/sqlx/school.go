package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/core"
	"github.com/trezcool/nabha/core/school"
)

var schoolColumns = []string{"id", "name", "location", "contact_number", "status", "created_at"}

type schoolRepository struct {
	repo
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(exec core.DBExecutor) school.Repository {
	return &schoolRepository{repo{exec: exec}}
}

func (sr schoolRepository) CreateSchool(ctx context.Context, s school.School, exec ...core.DBExecutor) (school.School, error) {
	s.ID = newID()
	s.CreatedAt = s.CreatedAt.UTC()
	q := psql.Insert("school").Columns(schoolColumns...).
		Values(s.ID, s.Name, s.Location, s.ContactNumber, s.Status, s.CreatedAt)
	if _, err := sr.execute(ctx, exec, q); err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return s, nil
}

func (sr schoolRepository) GetSchool(ctx context.Context, id string, exec ...core.DBExecutor) (school.School, error) {
	if !validID(id) {
		return school.School{}, school.ErrNotFound
	}
	var s school.School
	q := psql.Select(schoolColumns...).From("school").Where(sq.Eq{"id": id})
	if err := sr.get(ctx, exec, &s, q); err != nil {
		return school.School{}, trapNoRowsErr(err, school.ErrNotFound, "finding school")
	}
	return s, nil
}

func (sr schoolRepository) QuerySchools(ctx context.Context, exec ...core.DBExecutor) ([]school.School, error) {
	list := make([]school.School, 0)
	q := psql.Select(schoolColumns...).From("school").OrderBy("name ASC", "id ASC")
	if err := sr.selectAll(ctx, exec, &list, q); err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	return list, nil
}

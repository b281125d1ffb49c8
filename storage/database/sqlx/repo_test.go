package sqlxrepos_test

import (
	"testing"

	"github.com/trezcool/nabha/storage/database/repotest"
	sqlxrepos "github.com/trezcool/nabha/storage/database/sqlx"
	testutil "github.com/trezcool/nabha/tests"
)

// Runs against the database named by NABHA_TEST_DATABASE_URL; skipped without one.
func TestRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repositories {
		db := testutil.PrepareDB(t)
		testutil.ResetDB(t, db)
		return repotest.Repositories{
			Schools:     sqlxrepos.NewSchoolRepository(db),
			Users:       sqlxrepos.NewUserRepository(db),
			Content:     sqlxrepos.NewContentRepository(db),
			Progress:    sqlxrepos.NewProgressRepository(db),
			Assignments: sqlxrepos.NewAssignmentRepository(db),
			Alerts:      sqlxrepos.NewAlertRepository(db),
		}
	})
}

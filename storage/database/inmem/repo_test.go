package inmemdb_test

import (
	"testing"

	inmemdb "github.com/trezcool/nabha/storage/database/inmem"
	"github.com/trezcool/nabha/storage/database/repotest"
)

func TestRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repositories {
		db := inmemdb.Open()
		return repotest.Repositories{
			Schools:     inmemdb.NewSchoolRepository(db),
			Users:       inmemdb.NewUserRepository(db),
			Content:     inmemdb.NewContentRepository(db),
			Progress:    inmemdb.NewProgressRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
			Alerts:      inmemdb.NewAlertRepository(db),
		}
	})
}

package inmem_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/nabha/offline"
	"github.com/trezcool/nabha/storage/offline/inmem"
	"github.com/trezcool/nabha/storage/offline/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) func() offline.Store {
		s := inmem.New()
		return func() offline.Store { return s }
	})
}

func TestStore_partialBatch(t *testing.T) {
	s := inmem.New()
	var n int
	s.FailWrites = func(op string) error {
		if op != "content" {
			return nil
		}
		if n++; n == 2 {
			return errors.New("disk full")
		}
		return nil
	}
	storetest.RunPartialBatch(t, s)
}

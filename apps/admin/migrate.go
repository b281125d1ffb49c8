package main

import (
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
)

// migrator is the part of *migrate.Migrate the CLI drives.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Version() (version uint, dirty bool, err error)
}

var _ migrator = (*migrate.Migrate)(nil)

func (cli *commandLine) migrate(args []string) error {
	var n int
	switch args[0] {
	case "up", "down", "version":
	case "steps", "force":
		if len(args) < 2 {
			return fmt.Errorf("%s must be of form: migrate %s N", args[0], args[0])
		}
		var err error
		if n, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("N must be a number (got '%s')", args[1])
		}
	default:
		return fmt.Errorf("%q: no such command", args[0])
	}

	m, err := cli.newMigrator()
	if err != nil {
		return err
	}

	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(n)
	case "force":
		err = m.Force(n)
	}
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	version, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		cli.printf("no migration applied\n")
		return nil
	}
	if err != nil {
		return err
	}
	cli.printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}

package main

import (
	"errors"

	"github.com/madrasahub/madrasa/storage/document"
)

var gooseRunFunc = document.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("migrate requires the Postgres engine (unset DEV_DEBUG)")
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db, arguments...)
}

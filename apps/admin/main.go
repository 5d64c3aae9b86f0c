package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/core/teacher"
	"github.com/madrasahub/madrasa/storage/document"
	docrepos "github.com/madrasahub/madrasa/storage/repos"
)

var logger *log.Logger

type commandLine struct {
	conf        *core.Config
	db          *sql.DB // nil with the snapshot engine
	schoolRepo  school.Repository
	studentRepo student.Repository
	teacherRepo teacher.Repository
	contentRepo content.Repository
}

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up the store: snapshot file in DEV, Postgres elsewhere
	var store document.Store
	var db *sql.DB
	if conf.Debug {
		snap, err := document.OpenSnapshot(conf.Store.SnapshotPath)
		errAndDie(err)
		store = snap
	} else {
		errAndDie(document.CreateIfNotExist(conf))
		sqlxDB, err := document.Open(conf)
		errAndDie(err)
		defer sqlxDB.Close()
		errAndDie(document.Migrate(sqlxDB.DB))
		store = document.NewPostgresStore(sqlxDB)
		db = sqlxDB.DB
	}

	// start CLI
	cli := commandLine{
		conf:        conf,
		db:          db,
		schoolRepo:  docrepos.NewSchoolRepository(store),
		studentRepo: docrepos.NewStudentRepository(store),
		teacherRepo: docrepos.NewTeacherRepository(store),
		contentRepo: docrepos.NewContentRepository(store),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

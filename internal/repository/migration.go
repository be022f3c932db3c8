// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"database/sql"
	"embed"

	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const Version uint = 1

//go:embed migrations/*
var migrationFiles embed.FS

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, err
	}
	d, err := iofs.New(migrationFiles, "migrations/sqlite3")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", d, "sqlite3", driver)
}

func checkDBVersion(db *sql.DB) {
	m, err := newMigrate(db)
	if err != nil {
		log.Fatal(err)
	}

	v, dirty, err := m.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			log.Warn("Session database without version, migrating")
		} else {
			log.Fatal(err)
		}
	}
	if dirty {
		log.Fatalf("Session database in dirty state at version %d, remove it and retry", v)
	}

	if v < Version {
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatal(err)
		}
	} else if v > Version {
		log.Fatalf("Unsupported session database version %d, need %d", v, Version)
	}
}

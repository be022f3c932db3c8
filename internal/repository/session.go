// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/SomethingNew71/UltraLog/pkg/log"
	"github.com/SomethingNew71/UltraLog/pkg/schema"
	"github.com/jmoiron/sqlx"
)

var (
	sessionRepoOnce     sync.Once
	sessionRepoInstance *SessionRepository
)

// RecentFile is one row of the recent-files table.
type RecentFile struct {
	ID         int64   `db:"id"`
	Path       string  `db:"path"`
	Format     string  `db:"format"`
	Channels   int     `db:"channels"`
	Samples    int     `db:"samples"`
	Duration   float64 `db:"duration"`
	LastOpened int64   `db:"last_opened"`
}

// SessionRepository records which logs were opened. It feeds the
// recent-files listing; preferences stay out of it.
type SessionRepository struct {
	DB *sqlx.DB
}

func GetSessionRepository() *SessionRepository {
	sessionRepoOnce.Do(func() {
		db := GetConnection()

		sessionRepoInstance = &SessionRepository{
			DB: db.DB,
		}
	})
	return sessionRepoInstance
}

// RecordOpen upserts the entry for a freshly opened log. Failures are
// logged and swallowed: the session store must never block a tab.
func (r *SessionRepository) RecordOpen(path string, l *schema.Log) {
	samples := 0
	if len(l.Channels) > 0 {
		samples = len(l.Time) * len(l.Channels)
	}

	stmt := sq.Insert("recent_file").
		Columns("path", "format", "channels", "samples", "duration", "last_opened").
		Values(path, string(l.Format), len(l.Channels), samples, l.Duration(), time.Now().Unix()).
		Suffix(`ON CONFLICT(path) DO UPDATE SET
			format = excluded.format,
			channels = excluded.channels,
			samples = excluded.samples,
			duration = excluded.duration,
			last_opened = excluded.last_opened`)

	query, args, err := stmt.ToSql()
	if err != nil {
		log.Errorf("SESSION > building upsert: %v", err)
		return
	}
	if _, err := r.DB.Exec(query, args...); err != nil {
		log.Errorf("SESSION > recording %s: %v", path, err)
	}
}

// Recent returns the newest entries, most recently opened first.
func (r *SessionRepository) Recent(limit int) ([]RecentFile, error) {
	if limit <= 0 {
		limit = 10
	}

	query, args, err := sq.Select("id", "path", "format", "channels", "samples", "duration", "last_opened").
		From("recent_file").
		OrderBy("last_opened DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	var out []RecentFile
	if err := r.DB.Select(&out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// Forget removes one entry by path.
func (r *SessionRepository) Forget(path string) error {
	query, args, err := sq.Delete("recent_file").Where(sq.Eq{"path": path}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(query, args...)
	return err
}

// Prune drops entries older than the retention age. Called
// periodically by the task manager.
func (r *SessionRepository) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()
	query, args, err := sq.Delete("recent_file").Where(sq.Lt{"last_opened": cutoff}).ToSql()
	if err != nil {
		return 0, err
	}

	res, err := r.DB.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Copyright 2024 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"database/sql"
	"strings"

	"github.com/gorse-io/ordinal/base/log"
	"github.com/gorse-io/ordinal/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite stores ratings in a single table keyed by (user_id, item_id).
type SQLite struct {
	db *sql.DB
}

// Open a connection to a SQLite database. The path must start with sqlite://.
func Open(path string) (*SQLite, error) {
	if !strings.HasPrefix(path, SQLitePrefix) {
		return nil, errors.Errorf("Unknown database: %s", path)
	}
	dataSourceName := path[len(SQLitePrefix):]
	// append parameters
	dataSourceName, err := AppendURLParams(dataSourceName, []lo.Tuple2[string, string]{
		{"_pragma", "busy_timeout(10000)"},
		{"_pragma", "journal_mode(wal)"},
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	database := new(SQLite)
	if database.db, err = sql.Open("sqlite", dataSourceName); err != nil {
		return nil, errors.Trace(err)
	}
	return database, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Init() error {
	if _, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS ratings (
	user_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	rating REAL NOT NULL,
	PRIMARY KEY (user_id, item_id)
);`); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// InsertRatings inserts ratings in one transaction. A second rating of the same user and
// item violates the primary key, and the whole batch is rolled back.
func (s *SQLite) InsertRatings(ratings []dataset.Rating) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Trace(err)
	}
	stmt, err := tx.Prepare(`
INSERT INTO ratings (user_id, item_id, rating) VALUES (?, ?, ?)
`)
	if err != nil {
		_ = tx.Rollback()
		return errors.Trace(err)
	}
	defer stmt.Close()
	for _, rating := range ratings {
		if _, err = stmt.Exec(rating.UserId, rating.ItemId, rating.Value); err != nil {
			_ = tx.Rollback()
			return errors.Annotatef(err, "insert rating of user %s and item %s", rating.UserId, rating.ItemId)
		}
	}
	return errors.Trace(tx.Commit())
}

func (s *SQLite) CountRatings() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ratings`).Scan(&count); err != nil {
		return 0, errors.Trace(err)
	}
	return count, nil
}

// LoadRatings reads all ratings in insertion order.
func (s *SQLite) LoadRatings() (*dataset.RatingMatrix, error) {
	rs, err := s.db.Query(`SELECT user_id, item_id, rating FROM ratings ORDER BY rowid`)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rs.Close()
	m := dataset.NewRatingMatrix()
	for rs.Next() {
		var rating dataset.Rating
		if err = rs.Scan(&rating.UserId, &rating.ItemId, &rating.Value); err != nil {
			return nil, errors.Trace(err)
		}
		m.AddRating(rating.UserId, rating.ItemId, rating.Value)
	}
	if err = rs.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Debug("load ratings from sqlite",
		zap.Int("n_users", m.UserCount()),
		zap.Int("n_items", m.ItemCount()),
		zap.Int("n_ratings", m.CountRatings()))
	return m, nil
}

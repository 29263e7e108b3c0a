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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorse-io/ordinal/config"
	"github.com/gorse-io/ordinal/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type SQLiteTestSuite struct {
	suite.Suite
	path     string
	Database *SQLite
}

func (suite *SQLiteTestSuite) SetupTest() {
	var err error
	suite.path = fmt.Sprintf("sqlite://%s/sqlite.db", suite.T().TempDir())
	suite.Database, err = Open(suite.path)
	suite.NoError(err)
	err = suite.Database.Init()
	suite.NoError(err)
}

func (suite *SQLiteTestSuite) TearDownTest() {
	suite.NoError(suite.Database.Close())
}

func (suite *SQLiteTestSuite) TestRatings() {
	err := suite.Database.InsertRatings([]dataset.Rating{
		{UserId: "1", ItemId: "a", Value: 5},
		{UserId: "1", ItemId: "b", Value: 3},
		{UserId: "2", ItemId: "a", Value: 2},
	})
	suite.NoError(err)

	count, err := suite.Database.CountRatings()
	suite.NoError(err)
	suite.Equal(3, count)

	m, err := suite.Database.LoadRatings()
	suite.NoError(err)
	suite.Equal(2, m.UserCount())
	suite.Equal(2, m.ItemCount())
	suite.Equal([]lo.Tuple2[int32, float64]{{A: 0, B: 5}, {A: 1, B: 3}}, m.UserRatings(0))
	suite.Equal([]lo.Tuple2[int32, float64]{{A: 0, B: 2}}, m.UserRatings(1))
}

func (suite *SQLiteTestSuite) TestDuplicateRatings() {
	err := suite.Database.InsertRatings([]dataset.Rating{{UserId: "1", ItemId: "a", Value: 5}})
	suite.NoError(err)
	// a rating of an existing pair
	err = suite.Database.InsertRatings([]dataset.Rating{
		{UserId: "1", ItemId: "b", Value: 3},
		{UserId: "1", ItemId: "a", Value: 1},
	})
	suite.Error(err)
	// a pair rated twice in one batch
	err = suite.Database.InsertRatings([]dataset.Rating{
		{UserId: "2", ItemId: "a", Value: 5},
		{UserId: "2", ItemId: "a", Value: 1},
	})
	suite.Error(err)

	m, err := suite.Database.LoadRatings()
	suite.NoError(err)
	suite.Equal(1, m.CountRatings())
	suite.Equal([]lo.Tuple2[int32, float64]{{A: 0, B: 5}}, m.UserRatings(0))
}

func (suite *SQLiteTestSuite) TestLoadRatings() {
	err := suite.Database.InsertRatings([]dataset.Rating{{UserId: "1", ItemId: "a", Value: 5}})
	suite.NoError(err)
	m, err := LoadRatings(config.DataConfig{Source: suite.path})
	suite.NoError(err)
	suite.Equal(1, m.CountRatings())
}

func TestSQLite(t *testing.T) {
	suite.Run(t, new(SQLiteTestSuite))
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open("mysql://localhost")
	assert.Error(t, err)
}

func TestLoadRatingsFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	assert.NoError(t, os.WriteFile(path, []byte("user,item,rating\n1,a,5\n1,b,3\n"), 0644))
	m, err := LoadRatings(config.DataConfig{Source: CSVPrefix + path, Separator: ",", HasHeader: true})
	assert.NoError(t, err)
	assert.Equal(t, 2, m.CountRatings())

	_, err = LoadRatings(config.DataConfig{Source: "redis://localhost"})
	assert.True(t, errors.Is(err, errors.NotSupported))
}

func TestAppendURLParams(t *testing.T) {
	u, err := AppendURLParams("/tmp/ratings.db", []lo.Tuple2[string, string]{{"_pragma", "busy_timeout(10000)"}})
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/ratings.db?_pragma=busy_timeout%2810000%29", u)
}

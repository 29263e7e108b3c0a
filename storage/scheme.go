// Copyright 2022 gorse Project Authors
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
	"net/url"
	"strings"

	"github.com/gorse-io/ordinal/config"
	"github.com/gorse-io/ordinal/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

const (
	CSVPrefix    = "csv://"
	SQLitePrefix = "sqlite://"
)

func AppendURLParams(rawURL string, params []lo.Tuple2[string, string]) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Trace(err)
	}
	q := parsed.Query()
	for _, tuple := range params {
		q.Add(tuple.A, tuple.B)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

// LoadRatings loads ratings from the source named in the data config: csv://<path> or
// sqlite://<path>.
func LoadRatings(cfg config.DataConfig) (*dataset.RatingMatrix, error) {
	switch {
	case strings.HasPrefix(cfg.Source, CSVPrefix):
		return dataset.LoadRatingsFromCSV(cfg.Source[len(CSVPrefix):], cfg.Separator, cfg.HasHeader)
	case strings.HasPrefix(cfg.Source, SQLitePrefix):
		database, err := Open(cfg.Source)
		if err != nil {
			return nil, errors.Trace(err)
		}
		defer database.Close()
		return database.LoadRatings()
	}
	return nil, errors.NotSupportedf("rating source %s", cfg.Source)
}

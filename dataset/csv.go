// Copyright 2025 gorse Project Authors
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

package dataset

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gorse-io/ordinal/base/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// LoadRatingsFromCSV loads ratings from a CSV file. The CSV file should be:
//
//	[optional header]
//	<userId 1> <sep> <itemId 1> <sep> <rating 1> <sep> <extras>
//	<userId 2> <sep> <itemId 2> <sep> <rating 2> <sep> <extras>
//	...
//
// For example, the `u.data` from MovieLens 100K is:
//
//	196\t242\t3\t881250949
//	186\t302\t3\t891717742
func LoadRatingsFromCSV(fileName, sep string, hasHeader bool) (*RatingMatrix, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	return ReadRatings(file, sep, hasHeader)
}

// ReadRatings parses ratings in the format of LoadRatingsFromCSV.
func ReadRatings(r io.Reader, sep string, hasHeader bool) (*RatingMatrix, error) {
	if sep == "" {
		return nil, errors.NotValidf("empty separator")
	}
	m := NewRatingMatrix()
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		// Ignore header
		if hasHeader {
			hasHeader = false
			continue
		}
		// Ignore empty line
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) < 3 {
			return nil, errors.NotValidf("line %d: expected at least 3 fields but got %d", lineNumber, len(fields))
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return nil, errors.Annotatef(err, "line %d", lineNumber)
		}
		m.AddRating(strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]), value)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Debug("load ratings from csv",
		zap.Int("n_users", m.UserCount()),
		zap.Int("n_items", m.ItemCount()),
		zap.Int("n_ratings", m.CountRatings()))
	return m, nil
}

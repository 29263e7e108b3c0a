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

package ordinal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gorse-io/ordinal/base/log"
	"github.com/gorse-io/ordinal/base/progress"
	"github.com/gorse-io/ordinal/common/parallel"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// PositionVector holds positions of compared items in ascending item order. A position
// that is exactly zero is stored as the sentinel, so that every stored value is non-zero.
type PositionVector struct {
	Indices  []int32
	Values   []float64
	sentinel float64
}

func (v *PositionVector) Len() int {
	return len(v.Indices)
}

// Value returns the decoded position of an item and whether the item was compared.
func (v *PositionVector) Value(item int32) (float64, bool) {
	pos := sort.Search(len(v.Indices), func(k int) bool { return v.Indices[k] >= item })
	if pos < len(v.Indices) && v.Indices[pos] == item {
		if v.Values[pos] == v.sentinel {
			return 0, true
		}
		return v.Values[pos], true
	}
	return 0, false
}

// PreferencesToPositions computes the position of every compared item of a relation:
//
//	position = (preferred - less preferred) / (preferred + less preferred + equally preferred)
//
// counted over the row of the item. Positions range over [-1, 1].
func (s *PreferenceRelations) PreferencesToPositions(relation *PreferenceRelation) *PositionVector {
	if trace := relation.Trace(); trace != 0 {
		panic(errors.Errorf("preference relation has %d diagonal entries", trace))
	}
	rows := relation.Rows()
	positions := &PositionVector{
		Indices:  make([]int32, 0, len(rows)),
		Values:   make([]float64, 0, len(rows)),
		sentinel: s.config.ZeroInSparseMatrix,
	}
	for _, i := range rows {
		preferred, lessPreferred, equallyPreferred := relation.Row(i).Count()
		total := preferred + lessPreferred + equallyPreferred
		if total == 0 {
			continue
		}
		position := float64(preferred-lessPreferred) / float64(total)
		if position == 0 {
			position = s.config.ZeroInSparseMatrix
		}
		positions.Indices = append(positions.Indices, i)
		positions.Values = append(positions.Values, position)
	}
	return positions
}

// PositionMatrix stacks position vectors of users. Row r belongs to Users[r] and users are
// in ascending order. Items never compared by a user are 0 and zero positions are the
// sentinel.
type PositionMatrix struct {
	*mat.Dense
	Users []int32
}

// PositionMatrix computes positions of all users in parallel.
func (s *PreferenceRelations) PositionMatrix(ctx context.Context) (*PositionMatrix, error) {
	start := time.Now()
	users := s.Users()
	positionsByUser := make(map[int32]*PositionVector, len(users))
	var mu sync.Mutex
	ctx, span := progress.Start(ctx, "PositionMatrix", len(users))
	err := parallel.For(ctx, len(users), s.numWorkers(), func(jobId int) {
		defer span.Add(1)
		user := users[jobId]
		positions := s.PreferencesToPositions(s.relations[user])
		mu.Lock()
		positionsByUser[user] = positions
		mu.Unlock()
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()

	result := &PositionMatrix{Dense: &mat.Dense{}, Users: users}
	if len(users) > 0 && s.itemCount > 0 {
		result.Dense = mat.NewDense(len(users), s.itemCount, nil)
		for row, user := range users {
			positions := positionsByUser[user]
			for k, item := range positions.Indices {
				result.Set(row, int(item), positions.Values[k])
			}
		}
	}
	ComputePositionsSeconds.Set(time.Since(start).Seconds())
	log.Logger().Debug("compute position matrix",
		zap.Int("n_users", len(users)),
		zap.Duration("used_time", time.Since(start)))
	return result, nil
}

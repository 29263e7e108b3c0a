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
	"sync"
	"time"

	"github.com/gorse-io/ordinal/base/log"
	"github.com/gorse-io/ordinal/base/progress"
	"github.com/gorse-io/ordinal/common/heap"
	"github.com/gorse-io/ordinal/common/parallel"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// TopNItems returns at most n items of a relation with the highest positions. Ties are
// broken by ascending item index. Only items compared at least once are ranked.
func (s *PreferenceRelations) TopNItems(relation *PreferenceRelation, n int) ([]int32, error) {
	if n <= 0 {
		return nil, errors.NotValidf("top n %d", n)
	}
	positions, compared := positionsOf(relation)
	filter := heap.NewTopKFilter[int32, float64](n)
	for i, position := range positions {
		if compared[i] {
			filter.Push(int32(i), position)
		}
	}
	return filter.PopAllValues(), nil
}

// positionsOf counts judgments over the whole item space and returns positions with a flag
// for items compared at least once. Positions of other items are 0.
func positionsOf(relation *PreferenceRelation) ([]float64, []bool) {
	itemCount := relation.ItemCount()
	preferred := make([]float64, itemCount)
	lessPreferred := make([]float64, itemCount)
	equallyPreferred := make([]float64, itemCount)
	for _, i := range relation.Rows() {
		p, l, e := relation.Row(i).Count()
		preferred[i], lessPreferred[i], equallyPreferred[i] = float64(p), float64(l), float64(e)
	}
	diff := make([]float64, itemCount)
	floats.SubTo(diff, preferred, lessPreferred)
	total := make([]float64, itemCount)
	floats.AddTo(total, preferred, lessPreferred)
	floats.Add(total, equallyPreferred)
	positions := make([]float64, itemCount)
	compared := make([]bool, itemCount)
	for i := range positions {
		if total[i] > 0 {
			positions[i] = diff[i] / total[i]
			compared[i] = true
		}
	}
	return positions, compared
}

// TopNItemsByUser computes top n items of every user in parallel.
func (s *PreferenceRelations) TopNItemsByUser(ctx context.Context, n int) (map[int32][]int32, error) {
	if n <= 0 {
		return nil, errors.NotValidf("top n %d", n)
	}
	start := time.Now()
	users := s.Users()
	topN := make(map[int32][]int32, len(users))
	var mu sync.Mutex
	ctx, span := progress.Start(ctx, "TopNItemsByUser", len(users))
	err := parallel.Parallel(ctx, len(users), s.numWorkers(), func(_, jobId int) error {
		defer span.Add(1)
		user := users[jobId]
		items, err := s.TopNItems(s.relations[user], n)
		if err != nil {
			return errors.Trace(err)
		}
		mu.Lock()
		topN[user] = items
		mu.Unlock()
		return nil
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()
	TopNSeconds.Set(time.Since(start).Seconds())
	log.Logger().Debug("compute top n items",
		zap.Int("n_users", len(users)),
		zap.Int("n", n),
		zap.Duration("used_time", time.Since(start)))
	return topN, nil
}

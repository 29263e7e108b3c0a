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
	"math"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/ordinal/base/log"
	"github.com/gorse-io/ordinal/base/progress"
	"github.com/gorse-io/ordinal/common/parallel"
	"github.com/gorse-io/ordinal/config"
	"github.com/gorse-io/ordinal/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Metric measures the similarity between two users of a store.
type Metric func(relations *PreferenceRelations, userA, userB int32) float64

// PreferenceRelations holds the preference relation of every user. Relations are added while
// building and only read afterwards.
type PreferenceRelations struct {
	mu            sync.Mutex
	relations     map[int32]*PreferenceRelation
	itemCount     int
	config        config.PreferenceConfig
	numJobs       int
	seenThreshold int
	// users with at least one non-integral rating
	nonIntegralUsers int
}

// NewPreferenceRelations creates an empty store over itemCount items.
func NewPreferenceRelations(itemCount int, cfg *config.Config) *PreferenceRelations {
	return &PreferenceRelations{
		relations:     make(map[int32]*PreferenceRelation),
		itemCount:     itemCount,
		config:        cfg.Preferences,
		numJobs:       cfg.Ordinal.NumJobs,
		seenThreshold: cfg.Ordinal.SeenThreshold,
	}
}

// CreateDiscrete builds preference relations from ratings. For every ordered pair of distinct
// items rated by a user, the higher rated item is preferred to the other and equal ratings
// are equally preferred. Users without ratings are not stored. A zero rating, an item rated
// twice by a user, an item outside the item space, or a rating count that disagrees with the
// source fails the build. Ratings are compared by exact equality, so non-integral ratings are
// counted and reported with a warning.
func CreateDiscrete(ctx context.Context, source dataset.RatingSource, cfg *config.Config) (*PreferenceRelations, error) {
	start := time.Now()
	relations := NewPreferenceRelations(source.ItemCount(), cfg)
	userCount := source.UserCount()
	nonIntegralUsers := atomic.NewInt64(0)
	ctx, span := progress.Start(ctx, "CreateDiscrete", userCount)
	err := parallel.Parallel(ctx, userCount, relations.numWorkers(), func(_, jobId int) error {
		defer span.Add(1)
		user := int32(jobId)
		ratings := source.UserRatings(user)
		if len(ratings) == 0 {
			return nil
		}
		relation, err := createRelation(ratings, source.CountUserRatings(user), relations.itemCount)
		if err != nil {
			return errors.Annotatef(err, "user %d", user)
		}
		if lo.SomeBy(ratings, func(rating lo.Tuple2[int32, float64]) bool {
			return rating.B != math.Trunc(rating.B)
		}) {
			nonIntegralUsers.Inc()
		}
		relations.Set(user, relation)
		return nil
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()

	relations.nonIntegralUsers = int(nonIntegralUsers.Load())
	if relations.nonIntegralUsers > 0 {
		log.Logger().Warn("non-integral ratings are compared by exact equality",
			zap.Int("n_users", relations.nonIntegralUsers))
	}
	entries := relations.Entries()
	BuildPreferenceRelationsSeconds.Set(time.Since(start).Seconds())
	PreferenceRelationEntries.Set(float64(entries))
	UsersProcessed.Set(float64(relations.UserCount()))
	log.Logger().Info("create preference relations",
		zap.Int("n_users", relations.UserCount()),
		zap.Int("n_items", relations.itemCount),
		zap.Int("n_entries", entries),
		zap.Duration("used_time", time.Since(start)))
	return relations, nil
}

func createRelation(ratings []lo.Tuple2[int32, float64], count, itemCount int) (*PreferenceRelation, error) {
	// validate ratings
	if count != len(ratings) {
		return nil, errors.NotValidf("rating count %d but got %d ratings", count, len(ratings))
	}
	seen := mapset.NewThreadUnsafeSet[int32]()
	for _, rating := range ratings {
		if rating.A < 0 || int(rating.A) >= itemCount {
			return nil, errors.NotValidf("item %d out of range [0, %d)", rating.A, itemCount)
		}
		if rating.B == 0 {
			return nil, errors.NotValidf("zero rating of item %d", rating.A)
		}
		if !seen.Add(rating.A) {
			return nil, errors.NotValidf("duplicate rating of item %d", rating.A)
		}
	}
	// insert entries in ascending order
	sorted := make([]lo.Tuple2[int32, float64], len(ratings))
	copy(sorted, ratings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].A < sorted[j].A })
	relation := NewPreferenceRelation(itemCount)
	for _, left := range sorted {
		for _, right := range sorted {
			if left.A != right.A {
				relation.Set(left.A, right.A, Compare(left.B, right.B))
			}
		}
	}
	if k := count; relation.Entries() != k*(k-1) {
		return nil, errors.Errorf("expect %d entries but got %d", k*(k-1), relation.Entries())
	}
	return relation, nil
}

func (s *PreferenceRelations) numWorkers() int {
	return parallel.NumWorkers(s.numJobs)
}

// Get returns the relation of a user.
func (s *PreferenceRelations) Get(user int32) (*PreferenceRelation, error) {
	relation, exist := s.relations[user]
	if !exist {
		return nil, errors.NotFoundf("user %d", user)
	}
	return relation, nil
}

// Set stores the relation of a user. It is safe for concurrent use while building.
func (s *PreferenceRelations) Set(user int32, relation *PreferenceRelation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relations[user] = relation
}

// At returns the judgment of a user at (i, j) and whether the entry is present.
func (s *PreferenceRelations) At(user, i, j int32) (Preference, bool) {
	relation, exist := s.relations[user]
	if !exist {
		return NoPreference, false
	}
	return relation.At(i, j)
}

// Users returns stored users in ascending order.
func (s *PreferenceRelations) Users() []int32 {
	users := lo.Keys(s.relations)
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}

func (s *PreferenceRelations) UserCount() int {
	return len(s.relations)
}

func (s *PreferenceRelations) ItemCount() int {
	return s.itemCount
}

// Entries returns the number of entries over all users.
func (s *PreferenceRelations) Entries() int {
	return lo.SumBy(lo.Values(s.relations), func(r *PreferenceRelation) int { return r.Entries() })
}

// NonIntegralUsers returns the number of users rating at least one item with a non-integral
// value during the build.
func (s *PreferenceRelations) NonIntegralUsers() int {
	return s.nonIntegralUsers
}

// Config returns the judgment codes of the store.
func (s *PreferenceRelations) Config() config.PreferenceConfig {
	return s.config
}

// SeenItemsByUser returns, for every user, the items whose rows have at least the seen
// threshold of entries, in ascending order.
func (s *PreferenceRelations) SeenItemsByUser(ctx context.Context) (map[int32][]int32, error) {
	users := s.Users()
	seenItems := make(map[int32][]int32, len(users))
	var mu sync.Mutex
	ctx, span := progress.Start(ctx, "SeenItemsByUser", len(users))
	err := parallel.For(ctx, len(users), s.numWorkers(), func(jobId int) {
		defer span.Add(1)
		user := users[jobId]
		relation := s.relations[user]
		items := lo.Filter(relation.Rows(), func(i int32, _ int) bool {
			return relation.Row(i).Len() >= s.seenThreshold
		})
		mu.Lock()
		seenItems[user] = items
		mu.Unlock()
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()
	return seenItems, nil
}

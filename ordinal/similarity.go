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
	"sync"
	"time"

	"github.com/gorse-io/ordinal/base/log"
	"github.com/gorse-io/ordinal/base/progress"
	"github.com/gorse-io/ordinal/common/parallel"
	"github.com/gorse-io/ordinal/config"
	"github.com/juju/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

type SimilarityKind int

const (
	SimilarityCosinePreferenceRelation SimilarityKind = iota
	SimilarityPearsonPreferenceRelation
)

// ParseSimilarityKind parses a similarity name from configuration.
func ParseSimilarityKind(name string) (SimilarityKind, error) {
	switch name {
	case config.SimilarityCosine:
		return SimilarityCosinePreferenceRelation, nil
	case config.SimilarityPearson:
		return SimilarityPearsonPreferenceRelation, nil
	default:
		return 0, errors.NotSupportedf("similarity %s", name)
	}
}

func (kind SimilarityKind) String() string {
	switch kind {
	case SimilarityCosinePreferenceRelation:
		return config.SimilarityCosine
	case SimilarityPearsonPreferenceRelation:
		return config.SimilarityPearson
	default:
		return "unknown"
	}
}

// SimilarityMatrix is a symmetric user-user matrix with ones on the diagonal. Row r belongs
// to Users[r] and users are in ascending order.
type SimilarityMatrix struct {
	*mat.SymDense
	Users []int32
}

// UserCosine computes cosine similarities between users.
func (s *PreferenceRelations) UserCosine(ctx context.Context, metric Metric) (*SimilarityMatrix, error) {
	return s.ComputeSimilarities(ctx, SimilarityCosinePreferenceRelation, metric)
}

// ComputeSimilarities computes similarities between all pairs of users. Only the lower
// triangle is evaluated by the metric, the upper triangle is its mirror. Pearson
// similarity is not implemented yet.
func (s *PreferenceRelations) ComputeSimilarities(ctx context.Context, kind SimilarityKind, metric Metric) (*SimilarityMatrix, error) {
	switch kind {
	case SimilarityCosinePreferenceRelation:
	case SimilarityPearsonPreferenceRelation:
		return nil, errors.NotImplementedf("%s similarity of preference relations", kind)
	default:
		return nil, errors.NotSupportedf("similarity kind %d", int(kind))
	}
	if metric == nil {
		return nil, errors.NotValidf("nil metric")
	}

	start := time.Now()
	users := s.Users()
	dimension := len(users)
	similarities := &SimilarityMatrix{SymDense: &mat.SymDense{}, Users: users}
	if dimension == 0 {
		return similarities, nil
	}
	similarities.SymDense = mat.NewSymDense(dimension, nil)
	var mu sync.Mutex
	ctx, span := progress.Start(ctx, "ComputeSimilarities", dimension)
	err := parallel.For(ctx, dimension, s.numWorkers(), func(i int) {
		defer span.Add(1)
		for j := 0; j <= i; j++ {
			similarity := 1.0
			if i != j {
				similarity = metric(s, users[i], users[j])
				if math.IsNaN(similarity) {
					similarity = 0
				}
			}
			mu.Lock()
			similarities.SetSym(i, j, similarity)
			mu.Unlock()
		}
	})
	if err != nil {
		span.Fail(err)
		return nil, errors.Trace(err)
	}
	span.End()

	ComputeSimilaritiesSeconds.Set(time.Since(start).Seconds())
	log.Logger().Info("compute user similarities",
		zap.String("kind", kind.String()),
		zap.Int("n_users", dimension),
		zap.Duration("used_time", time.Since(start)))
	return similarities, nil
}

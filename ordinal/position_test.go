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
	"testing"

	"github.com/gorse-io/ordinal/dataset"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestPreferencesToPositions(t *testing.T) {
	relations, err := CreateDiscrete(context.Background(), newTestRatings(), newTestConfig())
	assert.NoError(t, err)
	relation, err := relations.Get(0)
	assert.NoError(t, err)
	positions := relations.PreferencesToPositions(relation)
	assert.Equal(t, []int32{0, 1, 2}, positions.Indices)
	assert.Equal(t, []float64{1, -0.5, -0.5}, positions.Values)
	value, ok := positions.Value(1)
	assert.True(t, ok)
	assert.Equal(t, -0.5, value)
	_, ok = positions.Value(3)
	assert.False(t, ok)

	// a single rating has no positions
	relation, err = relations.Get(1)
	assert.NoError(t, err)
	assert.Zero(t, relations.PreferencesToPositions(relation).Len())
}

func TestPreferencesToPositionsZero(t *testing.T) {
	m := dataset.NewRatingMatrix()
	m.AddRating("0", "a", 5)
	m.AddRating("0", "b", 3)
	m.AddRating("0", "c", 1)
	cfg := newTestConfig()
	relations, err := CreateDiscrete(context.Background(), m, cfg)
	assert.NoError(t, err)
	relation, err := relations.Get(0)
	assert.NoError(t, err)
	positions := relations.PreferencesToPositions(relation)
	assert.Equal(t, []float64{1, cfg.Preferences.ZeroInSparseMatrix, -1}, positions.Values)
	value, ok := positions.Value(1)
	assert.True(t, ok)
	assert.Zero(t, value)
}

func TestPositionMatrix(t *testing.T) {
	relations, err := CreateDiscrete(context.Background(), newTestRatings(), newTestConfig())
	assert.NoError(t, err)
	positions, err := relations.PositionMatrix(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3}, positions.Users)
	rows, cols := positions.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, []float64{1, -0.5, -0.5, 0}, positions.RawRowView(0))
	assert.Equal(t, []float64{0, 0, 0, 0}, positions.RawRowView(1))
	assert.Equal(t, []float64{0, 1, -1, 0}, positions.RawRowView(2))
	assert.Equal(t, []float64{0, 0, 0, 0}, positions.RawRowView(3))

	ComputePositionsSeconds.Set(-1)
	empty := NewPreferenceRelations(3, newTestConfig())
	positions, err = empty.PositionMatrix(context.Background())
	assert.NoError(t, err)
	rows, cols = positions.Dims()
	assert.Zero(t, rows)
	assert.Zero(t, cols)
	assert.Empty(t, positions.Users)
	var metric dto.Metric
	assert.NoError(t, ComputePositionsSeconds.Write(&metric))
	assert.GreaterOrEqual(t, metric.GetGauge().GetValue(), 0.0)
}

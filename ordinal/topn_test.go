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
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestTopNItems(t *testing.T) {
	relations, err := CreateDiscrete(context.Background(), newTestRatings(), newTestConfig())
	assert.NoError(t, err)
	relation, err := relations.Get(0)
	assert.NoError(t, err)

	items, err := relations.TopNItems(relation, 1)
	assert.NoError(t, err)
	assert.Equal(t, []int32{0}, items)
	// ties are broken by item index
	items, err = relations.TopNItems(relation, 3)
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2}, items)
	// uncompared items are not ranked
	items, err = relations.TopNItems(relation, 10)
	assert.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2}, items)

	_, err = relations.TopNItems(relation, 0)
	assert.True(t, errors.Is(err, errors.NotValid))

	relation, err = relations.Get(1)
	assert.NoError(t, err)
	items, err = relations.TopNItems(relation, 3)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestTopNItemsTies(t *testing.T) {
	m := dataset.NewRatingMatrix()
	m.AddRating("0", "a", 1)
	m.AddRating("0", "b", 3)
	m.AddRating("0", "c", 3)
	m.AddRating("0", "d", 3)
	relations, err := CreateDiscrete(context.Background(), m, newTestConfig())
	assert.NoError(t, err)
	relation, err := relations.Get(0)
	assert.NoError(t, err)
	items, err := relations.TopNItems(relation, 2)
	assert.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, items)
	items, err = relations.TopNItems(relation, 4)
	assert.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3, 0}, items)
}

func TestTopNItemsByUser(t *testing.T) {
	relations, err := CreateDiscrete(context.Background(), newTestRatings(), newTestConfig())
	assert.NoError(t, err)
	topN, err := relations.TopNItemsByUser(context.Background(), 2)
	assert.NoError(t, err)
	assert.Len(t, topN, 4)
	assert.Equal(t, []int32{0, 1}, topN[0])
	assert.Empty(t, topN[1])
	assert.Equal(t, []int32{1, 2}, topN[2])
	assert.Empty(t, topN[3])

	_, err = relations.TopNItemsByUser(context.Background(), -1)
	assert.True(t, errors.Is(err, errors.NotValid))
}

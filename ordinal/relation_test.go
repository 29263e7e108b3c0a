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
	"testing"

	"github.com/gorse-io/ordinal/config"
	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	assert.Equal(t, Preferred, Compare(5, 3))
	assert.Equal(t, LessPreferred, Compare(3, 5))
	assert.Equal(t, EquallyPreferred, Compare(3, 3))
	assert.Equal(t, LessPreferred, Preferred.Reverse())
	assert.Equal(t, Preferred, LessPreferred.Reverse())
	assert.Equal(t, EquallyPreferred, EquallyPreferred.Reverse())
}

func TestPreferenceCode(t *testing.T) {
	cfg := config.GetDefaultConfig().Preferences
	assert.Equal(t, 3.0, Preferred.Code(cfg))
	assert.Equal(t, 1.0, LessPreferred.Code(cfg))
	assert.Equal(t, 2.0, EquallyPreferred.Code(cfg))
	assert.Zero(t, NoPreference.Code(cfg))
	assert.Equal(t, "equally_preferred", EquallyPreferred.String())
	assert.Equal(t, "Preference(9)", Preference(9).String())
}

func TestPreferenceRelation(t *testing.T) {
	r := NewPreferenceRelation(4)
	r.Set(0, 2, Preferred)
	r.Set(0, 1, LessPreferred)
	r.Set(0, 3, EquallyPreferred)
	// replace an existing entry
	r.Set(0, 2, LessPreferred)
	assert.Equal(t, 3, r.Entries())
	assert.Equal(t, []int32{1, 2, 3}, r.Row(0).Indices)
	assert.Equal(t, []Preference{LessPreferred, LessPreferred, EquallyPreferred}, r.Row(0).Values)
	p, ok := r.At(0, 2)
	assert.True(t, ok)
	assert.Equal(t, LessPreferred, p)
	_, ok = r.At(1, 0)
	assert.False(t, ok)
	assert.Nil(t, r.Row(1))
	assert.Zero(t, r.Row(1).Len())
	assert.Equal(t, []int32{0}, r.Rows())
	assert.Zero(t, r.Trace())
	assert.False(t, r.IsAntisymmetric())

	preferred, lessPreferred, equallyPreferred := r.Row(0).Count()
	assert.Equal(t, 0, preferred)
	assert.Equal(t, 2, lessPreferred)
	assert.Equal(t, 1, equallyPreferred)

	r.Set(1, 0, Preferred)
	r.Set(2, 0, Preferred)
	r.Set(3, 0, EquallyPreferred)
	assert.True(t, r.IsAntisymmetric())
	assert.Equal(t, []int32{0, 1, 2, 3}, r.Rows())

	var entries int
	r.Range(func(i, j int32, p Preference) {
		assert.NotEqual(t, i, j)
		assert.NotEqual(t, NoPreference, p)
		entries++
	})
	assert.Equal(t, r.Entries(), entries)
}

func TestPreferenceRelationPanic(t *testing.T) {
	r := NewPreferenceRelation(3)
	assert.Panics(t, func() { r.Set(1, 1, Preferred) })
	assert.Panics(t, func() { r.Set(0, 3, Preferred) })
	assert.Panics(t, func() { r.Set(-1, 0, Preferred) })
	assert.Panics(t, func() { r.Set(0, 1, NoPreference) })
	assert.Zero(t, r.Entries())
}

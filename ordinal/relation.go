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
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// PreferenceRow is a sorted sparse row of a preference relation.
type PreferenceRow struct {
	Indices []int32
	Values  []Preference
}

func (row *PreferenceRow) Len() int {
	if row == nil {
		return 0
	}
	return len(row.Indices)
}

// Count returns the number of preferred, less preferred and equally preferred entries.
func (row *PreferenceRow) Count() (preferred, lessPreferred, equallyPreferred int) {
	if row == nil {
		return
	}
	for _, value := range row.Values {
		switch value {
		case Preferred:
			preferred++
		case LessPreferred:
			lessPreferred++
		case EquallyPreferred:
			equallyPreferred++
		}
	}
	return
}

func (row *PreferenceRow) at(j int32) (Preference, bool) {
	pos := sort.Search(len(row.Indices), func(k int) bool { return row.Indices[k] >= j })
	if pos < len(row.Indices) && row.Indices[pos] == j {
		return row.Values[pos], true
	}
	return NoPreference, false
}

// PreferenceRelation is the preference relation of a single user: a square sparse matrix
// over items. Rows with at least one entry are marked in a bitset.
type PreferenceRelation struct {
	itemCount int
	rows      map[int32]*PreferenceRow
	present   *bitset.BitSet
	entries   int
}

// NewPreferenceRelation creates an empty relation over itemCount items.
func NewPreferenceRelation(itemCount int) *PreferenceRelation {
	return &PreferenceRelation{
		itemCount: itemCount,
		rows:      make(map[int32]*PreferenceRow),
		present:   bitset.New(uint(itemCount)),
	}
}

func (r *PreferenceRelation) ItemCount() int {
	return r.itemCount
}

// Entries returns the number of present entries.
func (r *PreferenceRelation) Entries() int {
	return r.entries
}

// Set stores a judgment at (i, j), replacing an existing one. Diagonal entries, indices out
// of range and NoPreference are invariant violations and panic.
func (r *PreferenceRelation) Set(i, j int32, p Preference) {
	if i == j {
		panic(fmt.Sprintf("diagonal entry (%d, %d) is forbidden", i, j))
	}
	if i < 0 || int(i) >= r.itemCount || j < 0 || int(j) >= r.itemCount {
		panic(fmt.Sprintf("entry (%d, %d) out of range [0, %d)", i, j, r.itemCount))
	}
	if p == NoPreference {
		panic("NoPreference can not be stored")
	}
	row, exist := r.rows[i]
	if !exist {
		row = &PreferenceRow{}
		r.rows[i] = row
		r.present.Set(uint(i))
	}
	// fast path for ascending insertion
	if n := len(row.Indices); n == 0 || row.Indices[n-1] < j {
		row.Indices = append(row.Indices, j)
		row.Values = append(row.Values, p)
		r.entries++
		return
	}
	pos := sort.Search(len(row.Indices), func(k int) bool { return row.Indices[k] >= j })
	if row.Indices[pos] == j {
		row.Values[pos] = p
		return
	}
	row.Indices = append(row.Indices, 0)
	row.Values = append(row.Values, NoPreference)
	copy(row.Indices[pos+1:], row.Indices[pos:])
	copy(row.Values[pos+1:], row.Values[pos:])
	row.Indices[pos] = j
	row.Values[pos] = p
	r.entries++
}

// At returns the judgment at (i, j) and whether the entry is present.
func (r *PreferenceRelation) At(i, j int32) (Preference, bool) {
	row, exist := r.rows[i]
	if !exist {
		return NoPreference, false
	}
	return row.at(j)
}

// Row returns the i-th row, or nil if the row has no entries.
func (r *PreferenceRelation) Row(i int32) *PreferenceRow {
	return r.rows[i]
}

// Rows returns indices of rows with at least one entry in ascending order.
func (r *PreferenceRelation) Rows() []int32 {
	rows := make([]int32, 0, r.present.Count())
	for i, ok := r.present.NextSet(0); ok; i, ok = r.present.NextSet(i + 1) {
		rows = append(rows, int32(i))
	}
	return rows
}

// Range calls f for every present entry in row-major order.
func (r *PreferenceRelation) Range(f func(i, j int32, p Preference)) {
	for _, i := range r.Rows() {
		row := r.rows[i]
		for k, j := range row.Indices {
			f(i, j, row.Values[k])
		}
	}
}

// Trace returns the number of present diagonal entries.
func (r *PreferenceRelation) Trace() int {
	trace := 0
	for i, row := range r.rows {
		if _, ok := row.at(i); ok {
			trace++
		}
	}
	return trace
}

// IsAntisymmetric reports whether every entry (i, j) is mirrored by the reversed judgment
// at (j, i).
func (r *PreferenceRelation) IsAntisymmetric() bool {
	for i, row := range r.rows {
		for k, j := range row.Indices {
			mirrored, ok := r.At(j, i)
			if !ok || mirrored != row.Values[k].Reverse() {
				return false
			}
		}
	}
	return true
}

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

// FreqDict maps raw string ids to dense indices and counts how many ratings refer to
// each index.
type FreqDict struct {
	si  map[string]int32
	is  []string
	cnt []int
}

func NewFreqDict() *FreqDict {
	return &FreqDict{si: map[string]int32{}}
}

func (d *FreqDict) Count() int {
	return len(d.is)
}

// Id returns the index of s, registering s if it is new, and counts one occurrence.
func (d *FreqDict) Id(s string) int32 {
	y := d.NotCount(s)
	d.cnt[y]++
	return y
}

// NotCount returns the index of s, registering s if it is new, without counting.
func (d *FreqDict) NotCount(s string) int32 {
	if y, ok := d.si[s]; ok {
		return y
	}
	y := int32(len(d.is))
	d.si[s] = y
	d.is = append(d.is, s)
	d.cnt = append(d.cnt, 0)
	return y
}

// Lookup returns the index of s without registering it.
func (d *FreqDict) Lookup(s string) (int32, bool) {
	y, ok := d.si[s]
	return y, ok
}

func (d *FreqDict) String(id int32) (string, bool) {
	if id < 0 || int(id) >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

func (d *FreqDict) Freq(id int32) int {
	if id < 0 || int(id) >= len(d.cnt) {
		return 0
	}
	return d.cnt[id]
}

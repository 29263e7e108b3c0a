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
	"github.com/samber/lo"
)

// Rating is an explicit rating given by a user to an item.
type Rating struct {
	UserId string
	ItemId string
	Value  float64
}

// RatingSource supplies ratings grouped by user. Users and items are addressed by dense
// indices in [0, UserCount()) and [0, ItemCount()).
type RatingSource interface {
	UserCount() int
	ItemCount() int
	// UserRatings returns (item index, rating) pairs of a user.
	UserRatings(userIndex int32) []lo.Tuple2[int32, float64]
	CountUserRatings(userIndex int32) int
}

// RatingMatrix is the in-memory RatingSource built from raw ratings.
type RatingMatrix struct {
	userDict    *FreqDict
	itemDict    *FreqDict
	userRatings [][]lo.Tuple2[int32, float64]
	count       int
}

func NewRatingMatrix() *RatingMatrix {
	return &RatingMatrix{
		userDict: NewFreqDict(),
		itemDict: NewFreqDict(),
	}
}

// AddUser registers a user that may have no ratings.
func (m *RatingMatrix) AddUser(userId string) {
	userIndex := m.userDict.NotCount(userId)
	if int(userIndex) >= len(m.userRatings) {
		m.userRatings = append(m.userRatings, nil)
	}
}

// AddItem registers an item that may have no ratings.
func (m *RatingMatrix) AddItem(itemId string) {
	m.itemDict.NotCount(itemId)
}

// AddRating appends a rating. Ratings are stored as given; zero values and duplicated
// items are rejected later when preference relations are built.
func (m *RatingMatrix) AddRating(userId, itemId string, value float64) {
	userIndex := m.userDict.Id(userId)
	itemIndex := m.itemDict.Id(itemId)
	if int(userIndex) >= len(m.userRatings) {
		m.userRatings = append(m.userRatings, nil)
	}
	m.userRatings[userIndex] = append(m.userRatings[userIndex], lo.Tuple2[int32, float64]{A: itemIndex, B: value})
	m.count++
}

func (m *RatingMatrix) UserCount() int {
	return m.userDict.Count()
}

func (m *RatingMatrix) ItemCount() int {
	return m.itemDict.Count()
}

func (m *RatingMatrix) CountRatings() int {
	return m.count
}

func (m *RatingMatrix) UserRatings(userIndex int32) []lo.Tuple2[int32, float64] {
	return m.userRatings[userIndex]
}

func (m *RatingMatrix) CountUserRatings(userIndex int32) int {
	return len(m.userRatings[userIndex])
}

func (m *RatingMatrix) UserId(userIndex int32) string {
	s, _ := m.userDict.String(userIndex)
	return s
}

func (m *RatingMatrix) ItemId(itemIndex int32) string {
	s, _ := m.itemDict.String(itemIndex)
	return s
}

func (m *RatingMatrix) UserIndex(userId string) (int32, bool) {
	return m.userDict.Lookup(userId)
}

func (m *RatingMatrix) ItemIndex(itemId string) (int32, bool) {
	return m.itemDict.Lookup(itemId)
}

// Ratings returns all ratings with raw ids, grouped by user in index order.
func (m *RatingMatrix) Ratings() []Rating {
	ratings := make([]Rating, 0, m.count)
	for userIndex, userRatings := range m.userRatings {
		for _, r := range userRatings {
			ratings = append(ratings, Rating{
				UserId: m.UserId(int32(userIndex)),
				ItemId: m.ItemId(r.A),
				Value:  r.B,
			})
		}
	}
	return ratings
}

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

package metric

import (
	"github.com/gorse-io/ordinal/config"
	"github.com/gorse-io/ordinal/ordinal"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/floats"
)

// CosinePreferenceRelation returns the cosine similarity between preference relations of two
// users. Judgments are replaced by their codes and only entries present in both relations
// count. It is 0 if the users share no entry. An unknown user is a caller bug and panics;
// ComputeSimilarities returns such a panic as an error.
func CosinePreferenceRelation(cfg config.PreferenceConfig) ordinal.Metric {
	return func(relations *ordinal.PreferenceRelations, userA, userB int32) float64 {
		a, b := commonCodes(relations, cfg, userA, userB)
		if len(a) == 0 {
			return 0
		}
		normA, normB := floats.Norm(a, 2), floats.Norm(b, 2)
		if normA == 0 || normB == 0 {
			return 0
		}
		return floats.Dot(a, b) / (normA * normB)
	}
}

// PearsonPreferenceRelation is reserved for the Pearson correlation between preference
// relations.
func PearsonPreferenceRelation(_ config.PreferenceConfig) (ordinal.Metric, error) {
	return nil, errors.NotImplementedf("pearson similarity of preference relations")
}

// Get returns the metric of a similarity kind.
func Get(kind ordinal.SimilarityKind, cfg config.PreferenceConfig) (ordinal.Metric, error) {
	switch kind {
	case ordinal.SimilarityCosinePreferenceRelation:
		return CosinePreferenceRelation(cfg), nil
	case ordinal.SimilarityPearsonPreferenceRelation:
		return PearsonPreferenceRelation(cfg)
	default:
		return nil, errors.NotSupportedf("similarity kind %d", int(kind))
	}
}

// commonCodes collects codes of entries present in relations of both users.
func commonCodes(relations *ordinal.PreferenceRelations, cfg config.PreferenceConfig, userA, userB int32) ([]float64, []float64) {
	relationA, err := relations.Get(userA)
	if err != nil {
		panic(errors.Trace(err))
	}
	relationB, err := relations.Get(userB)
	if err != nil {
		panic(errors.Trace(err))
	}
	var a, b []float64
	for _, i := range relationA.Rows() {
		rowA, rowB := relationA.Row(i), relationB.Row(i)
		if rowB == nil {
			continue
		}
		for p, q := 0, 0; p < len(rowA.Indices) && q < len(rowB.Indices); {
			switch {
			case rowA.Indices[p] < rowB.Indices[q]:
				p++
			case rowA.Indices[p] > rowB.Indices[q]:
				q++
			default:
				a = append(a, rowA.Values[p].Code(cfg))
				b = append(b, rowB.Values[q].Code(cfg))
				p++
				q++
			}
		}
	}
	return a, b
}

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

	"github.com/gorse-io/ordinal/config"
)

// Preference is the judgment stored at an entry of a preference relation.
type Preference int8

const (
	// NoPreference is the zero value. It is never stored as an entry.
	NoPreference Preference = iota
	Preferred
	LessPreferred
	EquallyPreferred
)

// Compare judges the left rating against the right rating. Equality is exact, which suits
// discrete ratings; continuous ratings rarely compare equal.
func Compare(left, right float64) Preference {
	switch {
	case left > right:
		return Preferred
	case left < right:
		return LessPreferred
	default:
		return EquallyPreferred
	}
}

// Reverse returns the judgment of the mirrored entry.
func (p Preference) Reverse() Preference {
	switch p {
	case Preferred:
		return LessPreferred
	case LessPreferred:
		return Preferred
	default:
		return p
	}
}

// Code returns the numeric code of the judgment. NoPreference is coded as 0.
func (p Preference) Code(cfg config.PreferenceConfig) float64 {
	switch p {
	case Preferred:
		return cfg.Preferred
	case LessPreferred:
		return cfg.LessPreferred
	case EquallyPreferred:
		return cfg.EquallyPreferred
	default:
		return 0
	}
}

func (p Preference) String() string {
	switch p {
	case NoPreference:
		return "none"
	case Preferred:
		return "preferred"
	case LessPreferred:
		return "less_preferred"
	case EquallyPreferred:
		return "equally_preferred"
	default:
		return fmt.Sprintf("Preference(%d)", int8(p))
	}
}

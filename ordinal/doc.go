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

// Package ordinal turns per-user ratings into ordinal preference relations and derives
// item positions, top-N lists, seen items and user-user similarities from them.
//
// A preference relation of a user is a square sparse matrix over the item space. The entry
// at (i, j) tells whether the user prefers item i to item j, prefers j to i, or likes both
// equally. Only items rated by the user take part, and the diagonal is never populated.
//
// Relations are built once by CreateDiscrete and read by all other operations. Bulk
// operations fan out over users with a worker pool and join results under a single mutex.
package ordinal

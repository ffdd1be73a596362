// Goodbooks - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goodbooks

package algorithms

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/tomtom215/goodbooks/internal/recommend"
)

// InteractionMatrix is a sparse user-item rating store.
// It is immutable after construction.
type InteractionMatrix struct {
	// ratings maps user_id -> item_id -> rating
	ratings map[int]map[int]float64

	// interactions holds one entry per distinct (user, item) pair in first-seen order
	interactions []recommend.Interaction

	users []int
	items []int
	sum   float64
}

type pairKey struct {
	user int
	item int
}

// NewInteractionMatrix loads interactions. Duplicate (user, item) pairs are
// collapsed; the last rating wins and the pair keeps its first position.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func NewInteractionMatrix(interactions []recommend.Interaction) *InteractionMatrix {
	m := &InteractionMatrix{
		ratings:      make(map[int]map[int]float64),
		interactions: make([]recommend.Interaction, 0, len(interactions)),
	}

	pos := make(map[pairKey]int, len(interactions))
	for _, inter := range interactions {
		key := pairKey{inter.UserID, inter.ItemID}
		if at, dup := pos[key]; dup {
			m.interactions[at].Rating = inter.Rating
		} else {
			pos[key] = len(m.interactions)
			m.interactions = append(m.interactions, inter)
		}

		row, ok := m.ratings[inter.UserID]
		if !ok {
			row = make(map[int]float64)
			m.ratings[inter.UserID] = row
		}
		row[inter.ItemID] = inter.Rating
	}

	itemSet := make(map[int]struct{})
	for _, inter := range m.interactions {
		m.sum += inter.Rating
		itemSet[inter.ItemID] = struct{}{}
	}

	m.users = make([]int, 0, len(m.ratings))
	for u := range m.ratings {
		m.users = append(m.users, u)
	}
	sort.Ints(m.users)

	m.items = make([]int, 0, len(itemSet))
	for i := range itemSet {
		m.items = append(m.items, i)
	}
	sort.Ints(m.items)

	return m
}

// Len returns the number of distinct interactions.
func (m *InteractionMatrix) Len() int {
	return len(m.interactions)
}

// UserCount returns the number of distinct users.
func (m *InteractionMatrix) UserCount() int {
	return len(m.users)
}

// ItemCount returns the number of distinct rated items.
func (m *InteractionMatrix) ItemCount() int {
	return len(m.items)
}

// Interactions returns a copy of the distinct interactions.
func (m *InteractionMatrix) Interactions() []recommend.Interaction {
	return append([]recommend.Interaction(nil), m.interactions...)
}

// Users returns the sorted user ids.
func (m *InteractionMatrix) Users() []int {
	return append([]int(nil), m.users...)
}

// Items returns the sorted ids of rated items.
func (m *InteractionMatrix) Items() []int {
	return append([]int(nil), m.items...)
}

// UserItems returns the ratings of a user keyed by item id.
// The returned map must not be modified.
func (m *InteractionMatrix) UserItems(userID int) map[int]float64 {
	return m.ratings[userID]
}

// Rated reports whether the user rated the item.
func (m *InteractionMatrix) Rated(userID, itemID int) bool {
	_, ok := m.ratings[userID][itemID]
	return ok
}

// GlobalMean returns the mean rating, or 0 for an empty matrix.
func (m *InteractionMatrix) GlobalMean() float64 {
	if len(m.interactions) == 0 {
		return 0
	}
	return m.sum / float64(len(m.interactions))
}

// ActiveUsers returns, sorted, the users with more than minCount ratings.
func (m *InteractionMatrix) ActiveUsers(minCount int) []int {
	active := make([]int, 0, len(m.users))
	for _, u := range m.users {
		if len(m.ratings[u]) > minCount {
			active = append(active, u)
		}
	}
	return active
}

// Filter returns a new matrix restricted to the given users.
//
//nolint:gocritic // rangeValCopy: Interaction is small
func (m *InteractionMatrix) Filter(users []int) *InteractionMatrix {
	keep := make(map[int]struct{}, len(users))
	for _, u := range users {
		keep[u] = struct{}{}
	}

	kept := make([]recommend.Interaction, 0, len(m.interactions))
	for _, inter := range m.interactions {
		if _, ok := keep[inter.UserID]; ok {
			kept = append(kept, inter)
		}
	}
	return NewInteractionMatrix(kept)
}

// Split partitions the interactions into disjoint train and test sets.
// The interactions are shuffled with seed and the first ceil(ratio·n)
// become the test set. ErrInsufficientData is returned when ratio is outside
// (0, 1) or when either side would be empty.
func (m *InteractionMatrix) Split(ratio float64, seed int64) (train, test []recommend.Interaction, err error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("split ratio %v outside (0, 1): %w", ratio, recommend.ErrInsufficientData)
	}

	n := len(m.interactions)
	testN := int(math.Ceil(ratio * float64(n)))
	if testN == 0 || testN >= n {
		return nil, nil, fmt.Errorf("split %d interactions at ratio %v leaves an empty partition: %w",
			n, ratio, recommend.ErrInsufficientData)
	}

	shuffled := m.shuffled(seed)
	test = shuffled[:testN]
	train = shuffled[testN:]
	return train, test, nil
}

// Folds partitions the interactions into k disjoint folds of near-equal size.
func (m *InteractionMatrix) Folds(k int, seed int64) ([][]recommend.Interaction, error) {
	n := len(m.interactions)
	if k < 2 || k > n {
		return nil, fmt.Errorf("cannot build %d folds from %d interactions: %w", k, n, recommend.ErrInsufficientData)
	}

	shuffled := m.shuffled(seed)
	folds := make([][]recommend.Interaction, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		folds[f] = shuffled[start : start+size : start+size]
		start += size
	}
	return folds, nil
}

// shuffled returns a seeded permutation of the interactions.
func (m *InteractionMatrix) shuffled(seed int64) []recommend.Interaction {
	out := append([]recommend.Interaction(nil), m.interactions...)
	//nolint:gosec // G404: math/rand is acceptable for data partitioning (not security)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

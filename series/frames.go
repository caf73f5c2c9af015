// Package series decodes the frame-indexed JSON objects the overlay stores in
// quest rows. A value that fails to decode becomes an absent series instead of
// an error, so callers only ever branch on Present.
package series

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Frames is a sparse map from game frame to a sample.
type Frames[V any] struct {
	points  map[int]V
	present bool
}

// Decode parses raw as a JSON object keyed by frame number. Empty input,
// invalid JSON, or a non-integer key yields an absent series.
func Decode[V any](raw string) Frames[V] {
	if raw == "" {
		return Frames[V]{}
	}
	var byKey map[string]V
	if err := json.Unmarshal([]byte(raw), &byKey); err != nil {
		return Frames[V]{}
	}
	points := make(map[int]V, len(byKey))
	for k, v := range byKey {
		frame, err := strconv.Atoi(k)
		if err != nil {
			return Frames[V]{}
		}
		points[frame] = v
	}
	return Frames[V]{points: points, present: true}
}

// Of builds a present series from already-typed points.
func Of[V any](points map[int]V) Frames[V] {
	cp := make(map[int]V, len(points))
	for k, v := range points {
		cp[k] = v
	}
	return Frames[V]{points: cp, present: true}
}

// Present reports whether the series decoded successfully.
func (f Frames[V]) Present() bool { return f.present }

// Len is the number of samples; zero for an absent series.
func (f Frames[V]) Len() int { return len(f.points) }

// At returns the sample at frame.
func (f Frames[V]) At(frame int) (V, bool) {
	v, ok := f.points[frame]
	return v, ok
}

// Frames returns the sampled frame numbers in ascending order.
func (f Frames[V]) Frames() []int {
	keys := make([]int, 0, len(f.points))
	for k := range f.points {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Last returns the sample with the highest frame number.
func (f Frames[V]) Last() (V, bool) {
	var zero V
	if len(f.points) == 0 {
		return zero, false
	}
	best, first := 0, true
	for k := range f.points {
		if first || k > best {
			best, first = k, false
		}
	}
	return f.points[best], true
}

// Any reports whether some sample satisfies pred.
func (f Frames[V]) Any(pred func(V) bool) bool {
	for _, v := range f.points {
		if pred(v) {
			return true
		}
	}
	return false
}

// All reports whether the series is present and every sample satisfies pred.
func (f Frames[V]) All(pred func(V) bool) bool {
	if !f.present {
		return false
	}
	for _, v := range f.points {
		if !pred(v) {
			return false
		}
	}
	return true
}

// MaxInt returns the largest sample of an int series.
func MaxInt(f Frames[int]) (int, bool) {
	if f.Len() == 0 {
		return 0, false
	}
	m, first := 0, true
	for _, v := range f.points {
		if first || v > m {
			m, first = v, false
		}
	}
	return m, true
}

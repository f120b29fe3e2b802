// Package trip groups clips by date key and splits each group into trips at
// capture-time gaps.
package trip

import (
	"cmp"
	"slices"

	"github.com/backmassage/tripmaster/internal/naming"
)

// NominalClipSeconds is the nominal dash cam clip length. A delta between
// consecutive clips is measured against this continuation.
const NominalClipSeconds = 60

// Group is every clip sharing one date key, sorted by capture time.
type Group struct {
	DateKey string
	Clips   []naming.Clip
}

// Trip is an ordered, non-empty run of clips from one group.
type Trip struct {
	DateKey string
	Clips   []naming.Clip
}

// First returns the trip's earliest clip.
func (t Trip) First() naming.Clip { return t.Clips[0] }

// GroupByDate buckets clips by TripDateKey. Groups are ordered by key and
// clips within a group by CaptureSeconds, with the filename breaking ties.
func GroupByDate(clips []naming.Clip) []Group {
	byKey := make(map[string][]naming.Clip)
	for _, c := range clips {
		byKey[c.TripDateKey] = append(byKey[c.TripDateKey], c)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		g := byKey[k]
		slices.SortStableFunc(g, func(a, b naming.Clip) int {
			if c := cmp.Compare(a.CaptureSeconds, b.CaptureSeconds); c != 0 {
				return c
			}
			return cmp.Compare(a.Name(), b.Name())
		})
		groups = append(groups, Group{DateKey: k, Clips: g})
	}
	return groups
}

// Boundaries returns the start index of every trip in times, which must be
// sorted ascending. Index 0 is always a boundary. Index i+1 starts a new trip
// when (times[i+1]-times[i]-nominal) > maxDiff.
func Boundaries(times []float64, maxDiff, nominal float64) []int {
	if len(times) == 0 {
		return nil
	}
	idx := []int{0}
	for i := 1; i < len(times); i++ {
		d := times[i] - times[i-1]
		if d-nominal > maxDiff {
			idx = append(idx, i)
		}
	}
	return idx
}

// Segment splits clips (one date key, sorted by capture time) into trips.
// The concatenation of the returned trips is exactly clips.
func Segment(clips []naming.Clip, maxDiff, nominal float64) []Trip {
	times := make([]float64, len(clips))
	for i, c := range clips {
		times[i] = c.CaptureSeconds
	}
	bounds := Boundaries(times, maxDiff, nominal)

	trips := make([]Trip, 0, len(bounds))
	for i, start := range bounds {
		end := len(clips)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		trips = append(trips, Trip{
			DateKey: clips[start].TripDateKey,
			Clips:   clips[start:end:end],
		})
	}
	return trips
}

// Plan groups clips by date and segments every group. Trips are returned in
// key order, then capture order.
func Plan(clips []naming.Clip, maxDiff, nominal float64) []Trip {
	var trips []Trip
	for _, g := range GroupByDate(clips) {
		trips = append(trips, Segment(g.Clips, maxDiff, nominal)...)
	}
	return trips
}

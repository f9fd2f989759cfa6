// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "sort"

// # Renumber Planning

/*
renumberPlan computes the dense index assignment for a set of chapters.

Description: Orders the entries by (current index, id) and assigns 1..N in
that order. The sort is deterministic so repeated planning over an unchanged
book yields an identical assignment, and planning over an already dense book
is the identity mapping.

Parameters:
  - entries: []IndexAssignment (current indices; zero stands in for null)

Returns:
  - []IndexAssignment: One assignment per entry, indices exactly 1..N
*/
func renumberPlan(entries []IndexAssignment) []IndexAssignment {
	ordered := make([]IndexAssignment, len(entries))
	copy(ordered, entries)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Index != ordered[j].Index {
			return ordered[i].Index < ordered[j].Index
		}
		return ordered[i].ChapterID < ordered[j].ChapterID
	})

	assignments := make([]IndexAssignment, len(ordered))
	for position, entry := range ordered {
		assignments[position] = IndexAssignment{
			ChapterID: entry.ChapterID,
			Index:     position + 1,
		}
	}

	return assignments
}

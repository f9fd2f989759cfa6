// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"sort"

	"github.com/taibuivan/librum/pkg/document"
)

// # Merge Planning

// MergeSource records one absorbed chapter and where its text begins inside
// the merged document's plain-text coordinate space.
type MergeSource struct {
	ChapterID string

	// StartOffset is the running plain length immediately before this
	// chapter's content, after the divider preceding it. Highlights on this
	// chapter are shifted right by exactly this amount.
	StartOffset int
}

// MergePlan is the fully computed outcome of a merge, ready to be applied
// in one transaction or discarded for a preview.
type MergePlan struct {
	BookID   string
	TargetID string

	Title     string
	Slug      string
	Content   map[string]any
	FirstPage *int
	LastPage  *int

	// PlainLength is the merged document's total plain-text length.
	PlainLength int

	// Sources lists every absorbed chapter (the target excluded) with its
	// starting offset.
	Sources []MergeSource
}

/*
pickMergeTarget selects the surviving chapter when no explicit target is
requested.

Description: The source with the lowest index wins, tie-broken by lowest id.
The choice is deterministic because it decides which row (and slug) survives
and which chapters' highlights get offset-corrected.

Parameters:
  - sources: []*Chapter (at least one)

Returns:
  - *Chapter: The chosen target
*/
func pickMergeTarget(sources []*Chapter) *Chapter {
	target := sources[0]
	for _, candidate := range sources[1:] {
		if candidate.Index < target.Index ||
			(candidate.Index == target.Index && candidate.ID < target.ID) {
			target = candidate
		}
	}
	return target
}

/*
buildMergePlan assembles the merged document and offset table.

Description: Visits the target and every merge source in ascending
(index, id) order — the target sits in its natural position, not necessarily
first. Each chapter after the first is preceded by a divider marker carrying
its title. A chapter's starting offset is snapshotted after its divider and
before its content, so it points exactly at where the chapter's first
character lands. Malformed chapter bodies contribute nothing but do not fail
the merge.

The merged page range is the min of all non-null first pages and the max of
all non-null last pages.

Parameters:
  - bookID: string (UUID of the owning book)
  - target: *Chapter (the surviving chapter)
  - mergeSources: []*Chapter (absorbed chapters, target excluded)
  - newTitle: string (replacement title, or empty to keep the target's)
  - newSlug: string (replacement slug, already slugified, or empty)

Returns:
  - *MergePlan: The computed plan
*/
func buildMergePlan(bookID string, target *Chapter, mergeSources []*Chapter, newTitle, newSlug string) *MergePlan {
	participants := make([]*Chapter, 0, len(mergeSources)+1)
	participants = append(participants, target)
	participants = append(participants, mergeSources...)

	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].Index != participants[j].Index {
			return participants[i].Index < participants[j].Index
		}
		return participants[i].ID < participants[j].ID
	})

	builder := &document.Builder{}
	startOffsets := make(map[string]int, len(participants))

	for position, participant := range participants {
		if position > 0 {
			builder.AppendDivider(participant.Title)
		}
		startOffsets[participant.ID] = builder.Len()
		builder.AppendContent(participant.Content)
	}

	plan := &MergePlan{
		BookID:      bookID,
		TargetID:    target.ID,
		Title:       target.Title,
		Slug:        target.Slug,
		Content:     builder.Doc(),
		PlainLength: builder.Len(),
	}
	if newTitle != "" {
		plan.Title = newTitle
	}
	if newSlug != "" {
		plan.Slug = newSlug
	}

	for _, participant := range participants {
		if participant.FirstPage != nil &&
			(plan.FirstPage == nil || *participant.FirstPage < *plan.FirstPage) {
			first := *participant.FirstPage
			plan.FirstPage = &first
		}
		if participant.LastPage != nil &&
			(plan.LastPage == nil || *participant.LastPage > *plan.LastPage) {
			last := *participant.LastPage
			plan.LastPage = &last
		}
	}

	for _, source := range mergeSources {
		plan.Sources = append(plan.Sources, MergeSource{
			ChapterID:   source.ID,
			StartOffset: startOffsets[source.ID],
		})
	}

	return plan
}

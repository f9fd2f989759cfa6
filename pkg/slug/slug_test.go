// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/librum/pkg/slug"
)

/*
TestFrom tests the slug transformation pipeline.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple_title", "Chapter One", "chapter-one"},
		{"accents_removed", "Élan Café", "elan-cafe"},
		{"quotes_stripped", "Reader's Guide", "readers-guide"},
		{"smart_quotes_stripped", "The “Best” Part", "the-best-part"},
		{"punctuation_collapsed", "Part 1: The Beginning!!", "part-1-the-beginning"},
		{"leading_trailing_trimmed", "  --Hello--  ", "hello"},
		{"multi_hyphen_collapsed", "a - - b", "a-b"},
		{"already_clean", "chapter-12", "chapter-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestFrom_RandomFallback verifies that unusable input still yields a slug.
*/
func TestFrom_RandomFallback(t *testing.T) {
	hexToken := regexp.MustCompile(`^[0-9a-f]{8}$`)

	for _, input := range []string{"", "!!!", "„“”"} {
		got := slug.From(input)
		assert.Truef(t, hexToken.MatchString(got), "expected random token for %q, got %q", input, got)
	}

	// Two fallbacks must not collide.
	assert.NotEqual(t, slug.From(""), slug.From(""))
}

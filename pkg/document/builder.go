// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

// # Concatenation Builder

// Builder assembles a merged document by appending chapter bodies and
// divider markers while tracking the running plain length.
//
// # Offset Guarantee
//
// After every append, [Builder.Len] equals [PlainLength] of the document
// returned by [Builder.Doc]. Callers snapshot Len immediately before
// appending a chapter's content to obtain that chapter's starting offset
// in the merged coordinate space.
//
// Builder is not safe for concurrent use.
type Builder struct {
	nodes    []any
	plainLen int
}

// Len returns the running plain length of everything appended so far.
func (builder *Builder) Len() int {
	return builder.plainLen
}

// AppendDivider appends a chapter-divider marker node.
//
// Dividers carry no text, so the running plain length is unchanged —
// only the node stream grows.
func (builder *Builder) AppendDivider(title string) {
	builder.nodes = append(builder.nodes, Divider(title))
}

// AppendContent appends all top-level block nodes of doc and advances the
// running plain length by the document's plain length.
//
// Malformed documents contribute zero nodes and zero length (best-effort
// degradation; the merge must not fail on one bad chapter body).
func (builder *Builder) AppendContent(doc any) {
	for _, node := range Nodes(doc) {
		builder.nodes = append(builder.nodes, node)
	}
	builder.plainLen += PlainLength(doc)
}

// Doc returns the assembled document with root type "doc".
func (builder *Builder) Doc() map[string]any {
	// Never return a nil content array; an empty merge result is still a
	// well-formed empty document.
	nodes := builder.nodes
	if nodes == nil {
		nodes = []any{}
	}

	return map[string]any{
		"type":    TypeDoc,
		"content": nodes,
	}
}

// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package highlight

import "encoding/json"

// SelectorTypePosition marks selectors anchored by absolute character
// positions in the chapter's plain text. Only these are rebased on merge;
// other selector shapes (quotes, CSS paths) survive untouched.
const SelectorTypePosition = "TextPositionSelector"

// # Selector Handling

/*
ParseSelector decodes a raw selector column into a generic map.

Description: Selector documents come from many client versions and are not
guaranteed to be well formed. Anything that fails to decode as a JSON
object degrades to an empty map rather than failing the surrounding
operation.

Parameters:
  - raw: []byte (selector column, possibly nil or malformed)

Returns:
  - map[string]any: The decoded selector, or an empty map
*/
func ParseSelector(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}

	var selector map[string]any
	if err := json.Unmarshal(raw, &selector); err != nil || selector == nil {
		return map[string]any{}
	}

	return selector
}

/*
RebaseSelector shifts a selector's text positions by a fixed offset.

Description: When a chapter's text is prepended with earlier material the
annotation anchors move right by the length of that material. The shift
applies only to the "position" sub-object when its type is
[SelectorTypePosition]; positions that are missing or non-numeric are
treated as zero before the shift, so even a zero offset normalizes the
start and end fields to integers.

Parameters:
  - selector: map[string]any (mutated in place and returned)
  - offset: int (characters to add to start and end)

Returns:
  - map[string]any: The same selector, rebased
*/
func RebaseSelector(selector map[string]any, offset int) map[string]any {
	if selector == nil {
		return map[string]any{}
	}

	position, ok := selector["position"].(map[string]any)
	if !ok {
		return selector
	}
	if positionType, _ := position["type"].(string); positionType != SelectorTypePosition {
		return selector
	}

	position["start"] = asInt(position["start"]) + offset
	position["end"] = asInt(position["end"]) + offset

	return selector
}

// asInt coerces a decoded JSON value to an int, defaulting to zero.
func asInt(value any) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

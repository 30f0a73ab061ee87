package favourites

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Index maps a user identifier to the ordered ids of the characters that
// user marked as favourite. A user is present only while their list is
// non-empty and a list never holds the same id twice.
type Index map[string][]int

const indexSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {"type": "integer"}
	}
}`

var indexSchema = jsonschema.MustCompileString("favourites-index.json", indexSchemaJSON)

// MarshalIndex serialises idx as {"<user>": [ids...]}. Keys are sorted by
// encoding/json, so equal indexes always produce identical bytes.
func MarshalIndex(idx Index) ([]byte, error) {
	if idx == nil {
		idx = Index{}
	}
	data, err := json.Marshal(map[string][]int(idx))
	if err != nil {
		return nil, fmt.Errorf("marshalling favourites index: %w", err)
	}
	return data, nil
}

// UnmarshalIndex parses a persisted index. Documents that are not valid JSON
// or do not match the index schema are rejected. Accepted documents are
// normalised: duplicate ids keep their first occurrence and empty lists are
// dropped.
func UnmarshalIndex(data []byte) (Index, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding favourites index: %w", err)
	}
	if err := indexSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating favourites index: %w", err)
	}

	var raw map[string][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding favourites index: %w", err)
	}

	idx := make(Index, len(raw))
	for user, ids := range raw {
		cleaned := dedupe(ids)
		if len(cleaned) == 0 {
			continue
		}
		idx[user] = cleaned
	}
	return idx, nil
}

// Clone returns a deep copy of idx.
func (idx Index) Clone() Index {
	out := make(Index, len(idx))
	for user, ids := range idx {
		out[user] = slices.Clone(ids)
	}
	return out
}

// Equivalent reports whether both indexes hold the same users with the same
// id sets, ignoring order.
func (idx Index) Equivalent(other Index) bool {
	if len(idx) != len(other) {
		return false
	}
	for user, ids := range idx {
		otherIDs, ok := other[user]
		if !ok || len(otherIDs) != len(ids) {
			return false
		}
		a, b := slices.Clone(ids), slices.Clone(otherIDs)
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// toggle flips membership of id in ids. Added ids go to the end; removal
// keeps the relative order of the remaining ids.
func toggle(ids []int, id int) ([]int, bool) {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1), false
	}
	return append(ids, id), true
}

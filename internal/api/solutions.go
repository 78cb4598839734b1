package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/abhisek/interviewdeck/internal/model"
)

// SolutionIndex is the decoded body of GET /api/solutions.
type SolutionIndex struct {
	// Solutions maps storage keys and composite follow-up keys to results.
	Solutions map[string]json.RawMessage
	// ReactSolutions maps storage keys to raw React code.
	ReactSolutions map[string]string
	// FollowupSolutions maps follow-up ids to results.
	FollowupSolutions map[string]json.RawMessage
}

// Keys returns the keys of Solutions, sorted.
func (x *SolutionIndex) Keys() []string {
	keys := make([]string, 0, len(x.Solutions))
	for k := range x.Solutions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Followup decodes the composite-keyed result under key.
func (x *SolutionIndex) Followup(key string) (model.FollowupSolution, bool) {
	raw, ok := x.Solutions[key]
	if !ok {
		return model.FollowupSolution{}, false
	}
	f, err := DecodeFollowup(raw)
	if err != nil {
		return model.FollowupSolution{}, false
	}
	f.Key = key
	return f, true
}

// FollowupByID decodes the id-keyed result for id.
func (x *SolutionIndex) FollowupByID(id string) (model.FollowupSolution, bool) {
	raw, ok := x.FollowupSolutions[id]
	if !ok || isJSONNull(raw) {
		return model.FollowupSolution{}, false
	}
	f, err := DecodeFollowup(raw)
	if err != nil {
		return model.FollowupSolution{}, false
	}
	f.Key = id
	return f, true
}

// ParseSolutionIndex accepts both shapes the backend has served: an object
// with a "solutions" member, and a flat map of key to result.
func ParseSolutionIndex(raw []byte) (*SolutionIndex, error) {
	idx := &SolutionIndex{
		Solutions:         map[string]json.RawMessage{},
		ReactSolutions:    map[string]string{},
		FollowupSolutions: map[string]json.RawMessage{},
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isJSONNull(raw) {
		return idx, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("solution index: %w", err)
	}

	nested, ok := top["solutions"]
	if !ok || !isJSONObject(nested) {
		idx.Solutions = top
		return idx, nil
	}

	if err := json.Unmarshal(nested, &idx.Solutions); err != nil {
		return nil, fmt.Errorf("solution index solutions: %w", err)
	}
	if r, ok := top["react_solutions"]; ok && isJSONObject(r) {
		if err := json.Unmarshal(r, &idx.ReactSolutions); err != nil {
			return nil, fmt.Errorf("solution index react_solutions: %w", err)
		}
	}
	if f, ok := top["followup_solutions"]; ok && isJSONObject(f) {
		if err := json.Unmarshal(f, &idx.FollowupSolutions); err != nil {
			return nil, fmt.Errorf("solution index followup_solutions: %w", err)
		}
	}
	return idx, nil
}

// DecodeFollowup decodes a follow-up result stored either as an object or
// as raw text.
func DecodeFollowup(raw json.RawMessage) (model.FollowupSolution, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return model.FollowupSolution{}, err
		}
		return model.FollowupSolution{Raw: text, IsFollowup: true}, nil
	}
	var f model.FollowupSolution
	if err := json.Unmarshal(raw, &f); err != nil {
		return model.FollowupSolution{}, err
	}
	return f, nil
}

func isJSONObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isJSONNull(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

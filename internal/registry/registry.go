// Package registry persists the state that outlives a report draft: the
// engineer roster and the next report sequence number.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/couchcryptid/laudo-service/internal/domain"
)

// Storage keys, kept identical to the browser storage used by the original form.
const (
	KeyCount     = "laudosCount"
	KeyEngineers = "engenheiros"
)

// State is the decoded registry content.
type State struct {
	NextSequence int
	Engineers    []domain.Engineer
}

// Registry loads and saves State. Implementations must make Save atomic:
// a failed Save leaves the previously saved State readable.
type Registry interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// Decode builds State from raw key-value entries, applying the defaults for
// absent keys: sequence 1 and the seed roster.
func Decode(kv map[string]string) (State, error) {
	s := State{NextSequence: 1, Engineers: domain.SeedEngineers()}

	if v, ok := kv[KeyCount]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return State{}, fmt.Errorf("decode %s: invalid value %q", KeyCount, v)
		}
		s.NextSequence = n
	}

	if v, ok := kv[KeyEngineers]; ok && v != "" {
		var engineers []domain.Engineer
		if err := json.Unmarshal([]byte(v), &engineers); err != nil {
			return State{}, fmt.Errorf("decode %s: %w", KeyEngineers, err)
		}
		s.Engineers = engineers
	}

	return s, nil
}

// Encode is the inverse of Decode.
func Encode(s State) (map[string]string, error) {
	engineers := s.Engineers
	if engineers == nil {
		engineers = []domain.Engineer{}
	}
	data, err := json.Marshal(engineers)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", KeyEngineers, err)
	}
	return map[string]string{
		KeyCount:     strconv.Itoa(s.NextSequence),
		KeyEngineers: string(data),
	}, nil
}

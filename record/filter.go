package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/tabkit/coerce"
	apperrors "github.com/kbukum/tabkit/errors"
)

// Match is a single-field equality filter.
type Match struct {
	Field string `json:"field" yaml:"field"`
	Value any    `json:"value" yaml:"value"`
}

// MatchFromMap builds a Match from a one-entry map such as {"country": "US"},
// the shape filters take in job files. More than one entry is rejected since
// only single-key filters are supported.
func MatchFromMap(m map[string]any) (*Match, error) {
	switch len(m) {
	case 0:
		return nil, nil
	case 1:
		for k, v := range m {
			if k == "" {
				return nil, apperrors.InvalidSetting("filter", "field name must not be empty")
			}
			return &Match{Field: k, Value: v}, nil
		}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return nil, apperrors.InvalidSetting("filter", fmt.Sprintf("exactly one key allowed, got %v", keys))
}

// Matcher returns a predicate testing records against m. allowSpace disables
// trimming of string values before comparison.
func (m Match) Matcher(allowSpace bool) func(Record) bool {
	return func(r Record) bool {
		v, ok := r[m.Field]
		if !ok {
			return false
		}
		if s, isStr := v.(string); isStr && !allowSpace {
			v = strings.TrimSpace(s)
		}
		return coerce.Truthy(v) && coerce.Equal(v, m.Value)
	}
}

package command

import (
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

const (
	maxGrant      = 10000
	maxTitle      = 200
	maxDesc       = 2000
	maxReward     = 10000
	maxBatchItems = 200
	clockPattern  = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
)

var (
	resolveOnce sync.Once
	resolved    map[Kind]*jsonschema.Resolved
	resolveErr  error
)

// Schemas returns the JSON schema of every command kind.
func Schemas() map[Kind]*jsonschema.Schema {
	return map[Kind]*jsonschema.Schema{
		KindGrantXP: object(map[string]*jsonschema.Schema{
			"type":   tag(KindGrantXP),
			"amount": integer(-maxGrant, maxGrant),
			"reason": text(0, maxTitle),
		}, "type", "amount"),
		KindReplaceAgenda: object(map[string]*jsonschema.Schema{
			"type":  tag(KindReplaceAgenda),
			"items": list(agendaDraft()),
		}, "type", "items"),
		KindReplaceTasks: object(map[string]*jsonschema.Schema{
			"type":  tag(KindReplaceTasks),
			"items": list(taskDraft()),
		}, "type", "items"),
		KindAddTask: object(map[string]*jsonschema.Schema{
			"type":     tag(KindAddTask),
			"title":    text(1, maxTitle),
			"xp":       integer(0, maxReward),
			"category": enum("home", "health", "admin"),
		}, "type", "title"),
		KindCompleteTask: object(map[string]*jsonschema.Schema{
			"type":  tag(KindCompleteTask),
			"query": text(1, maxTitle),
		}, "type", "query"),
	}
}

func schemaFor(kind Kind) (*jsonschema.Resolved, error) {
	resolveOnce.Do(func() {
		resolved = make(map[Kind]*jsonschema.Resolved)
		for k, s := range Schemas() {
			rs, err := s.Resolve(nil)
			if err != nil {
				resolveErr = fmt.Errorf("resolving %s schema: %w", k, err)
				return
			}
			resolved[k] = rs
		}
	})
	if resolveErr != nil {
		return nil, resolveErr
	}
	rs, ok := resolved[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return rs, nil
}

func agendaDraft() *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"title":          text(1, maxTitle),
		"desc":           text(0, maxDesc),
		"type":           enum("work", "creative", "transit", "base", "learning", "sleep"),
		"startTime":      clock(),
		"endTime":        clock(),
		"xpReward":       integer(0, maxReward),
		"translationKey": text(0, maxTitle),
	}, "title", "startTime")
}

func taskDraft() *jsonschema.Schema {
	return object(map[string]*jsonschema.Schema{
		"title":          text(1, maxTitle),
		"desc":           text(0, maxDesc),
		"category":       enum("home", "health", "admin"),
		"xpReward":       integer(0, maxReward),
		"translationKey": text(0, maxTitle),
	}, "title")
}

func object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func tag(kind Kind) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Enum: []any{string(kind)}}
}

func text(minLen, maxLen int) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", MinLength: &minLen, MaxLength: &maxLen}
}

func integer(lo, hi float64) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Minimum: &lo, Maximum: &hi}
}

func enum(values ...string) *jsonschema.Schema {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return &jsonschema.Schema{Type: "string", Enum: vals}
}

func clock() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Pattern: clockPattern}
}

func list(items *jsonschema.Schema) *jsonschema.Schema {
	maxItems := maxBatchItems
	return &jsonschema.Schema{Type: "array", Items: items, MaxItems: &maxItems}
}

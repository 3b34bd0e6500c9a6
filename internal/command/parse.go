package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const maxCommands = 20

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Envelope is the wire form of a command batch.
type Envelope struct {
	Commands []json.RawMessage `json:"commands"`
}

// Extract finds a JSON payload in model output: either the whole reply or
// the first fenced code block.
func Extract(text string) (json.RawMessage, bool) {
	candidates := []string{strings.TrimSpace(text)}
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	for _, c := range candidates {
		if !strings.HasPrefix(c, "{") && !strings.HasPrefix(c, "[") {
			continue
		}
		if json.Valid([]byte(c)) {
			return json.RawMessage(c), true
		}
	}
	return nil, false
}

// Parse decodes and validates a batch. It accepts {"commands":[...]}, a bare
// array, or a single command object. Any invalid command fails the batch.
func Parse(raw []byte) ([]Command, error) {
	elems, err := split(raw)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(elems) > maxCommands {
		return nil, fmt.Errorf("%w: at most %d commands", ErrMalformed, maxCommands)
	}

	cmds := make([]Command, 0, len(elems))
	for i, elem := range elems {
		cmd, err := parseOne(elem)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func split(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return nil, ErrMalformed
	case trimmed[0] == '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return elems, nil
	case trimmed[0] == '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if _, ok := envelope["commands"]; ok {
			var env Envelope
			if err := json.Unmarshal(trimmed, &env); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			return env.Commands, nil
		}
		return []json.RawMessage{trimmed}, nil
	}
	return nil, fmt.Errorf("%w: expected an object or array", ErrMalformed)
}

func parseOne(raw json.RawMessage) (Command, error) {
	var instance map[string]any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	kind, _ := instance["type"].(string)
	if kind == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	schema, err := schemaFor(Kind(kind))
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchema, kind, err)
	}

	var cmd Command
	switch Kind(kind) {
	case KindGrantXP:
		cmd, err = decode[GrantXP](raw)
	case KindReplaceAgenda:
		cmd, err = decode[ReplaceAgenda](raw)
	case KindReplaceTasks:
		cmd, err = decode[ReplaceTasks](raw)
	case KindAddTask:
		cmd, err = decode[AddTask](raw)
	case KindCompleteTask:
		cmd, err = decode[CompleteTask](raw)
	}
	return cmd, err
}

func decode[T Command](raw json.RawMessage) (Command, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// Marshal encodes commands as an envelope.
func Marshal(cmds []Command) ([]byte, error) {
	env := Envelope{Commands: make([]json.RawMessage, 0, len(cmds))}
	for _, c := range cmds {
		raw, err := marshalOne(c)
		if err != nil {
			return nil, err
		}
		env.Commands = append(env.Commands, raw)
	}
	return json.Marshal(env)
}

func marshalOne(c Command) (json.RawMessage, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = string(c.Kind())
	return json.Marshal(fields)
}

package item

import (
	"encoding/json"
	"fmt"
)

// List names a recurring item collection.
type List string

const (
	ListAgenda    List = "agenda"
	ListTasks     List = "tasks"
	ListChecklist List = "checklist"
)

// Lists enumerates every recurring collection in reset order.
var Lists = []List{ListAgenda, ListTasks, ListChecklist}

// ParseList validates a list name.
func ParseList(s string) (List, error) {
	switch l := List(s); l {
	case ListAgenda, ListTasks, ListChecklist:
		return l, nil
	}
	return "", fmt.Errorf("%w: unknown list %q", ErrInvalidInput, s)
}

// Agenda block kinds.
const (
	KindWork     = "work"
	KindCreative = "creative"
	KindTransit  = "transit"
	KindBase     = "base"
	KindLearning = "learning"
	KindSleep    = "sleep"
)

// Task categories.
const (
	CategoryHome   = "home"
	CategoryHealth = "health"
	CategoryAdmin  = "admin"
)

// Item is one recurring agenda block, daily task or checklist entry.
type Item struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Desc           string `json:"desc,omitempty"`
	Kind           string `json:"type,omitempty"`
	Category       string `json:"category,omitempty"`
	StartTime      string `json:"startTime,omitempty"`
	EndTime        string `json:"endTime,omitempty"`
	Completed      bool   `json:"completed"`
	XPReward       int    `json:"xpReward"`
	TranslationKey string `json:"translationKey,omitempty"`
}

// UnmarshalJSON accepts the older per-list field names (xp, checked, text)
// found in exported backups.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var aux struct {
		plain
		XP      *int   `json:"xp"`
		Checked *bool  `json:"checked"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = Item(aux.plain)
	if aux.XP != nil && i.XPReward == 0 {
		i.XPReward = *aux.XP
	}
	if aux.Checked != nil && *aux.Checked {
		i.Completed = true
	}
	if i.Title == "" {
		i.Title = aux.Text
	}
	return nil
}

// Draft holds user or assistant supplied fields for a new item.
type Draft struct {
	Title          string `json:"title"`
	Desc           string `json:"desc,omitempty"`
	Kind           string `json:"type,omitempty"`
	Category       string `json:"category,omitempty"`
	StartTime      string `json:"startTime,omitempty"`
	EndTime        string `json:"endTime,omitempty"`
	XPReward       *int   `json:"xpReward,omitempty"`
	TranslationKey string `json:"translationKey,omitempty"`
}

// Direction moves an item within its list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

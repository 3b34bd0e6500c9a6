package item

import (
	"fmt"
	"strings"
	"time"
)

// MaxListLength caps the number of items a list may hold.
const MaxListLength = 200

const (
	maxTitleLength = 200
	maxDescLength  = 2000
	maxXPReward    = 10000
)

// ValidateDraft checks draft fields for the target list.
func ValidateDraft(list List, d Draft) error {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLength)
	}
	if len(d.Desc) > maxDescLength {
		return fmt.Errorf("%w: desc exceeds %d characters", ErrInvalidInput, maxDescLength)
	}
	if d.XPReward != nil && (*d.XPReward < 0 || *d.XPReward > maxXPReward) {
		return fmt.Errorf("%w: xpReward must be between 0 and %d", ErrInvalidInput, maxXPReward)
	}

	switch list {
	case ListAgenda:
		if d.Kind != "" && !validKind(d.Kind) {
			return fmt.Errorf("%w: unknown block type %q", ErrInvalidInput, d.Kind)
		}
		if !validClock(d.StartTime) {
			return fmt.Errorf("%w: startTime must be HH:MM", ErrInvalidInput)
		}
		if d.EndTime != "" && !validClock(d.EndTime) {
			return fmt.Errorf("%w: endTime must be HH:MM", ErrInvalidInput)
		}
	case ListTasks:
		if d.Category != "" && !validCategory(d.Category) {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, d.Category)
		}
	case ListChecklist:
	default:
		return fmt.Errorf("%w: unknown list %q", ErrInvalidInput, list)
	}
	return nil
}

// ValidateDrafts checks a replacement batch. Nothing is applied when any draft fails.
func ValidateDrafts(list List, drafts []Draft) error {
	if len(drafts) > MaxListLength {
		return fmt.Errorf("%w: at most %d items", ErrInvalidInput, MaxListLength)
	}
	for i, d := range drafts {
		if err := ValidateDraft(list, d); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func validKind(kind string) bool {
	switch kind {
	case KindWork, KindCreative, KindTransit, KindBase, KindLearning, KindSleep:
		return true
	}
	return false
}

func validCategory(category string) bool {
	switch category {
	case CategoryHome, CategoryHealth, CategoryAdmin:
		return true
	}
	return false
}

func validClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

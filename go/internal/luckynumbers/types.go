package luckynumbers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/0xpratik010/tridev/go/internal/models"
	"github.com/0xpratik010/tridev/go/internal/reveal"
)

var (
	ErrNotFound     = errors.New("lucky number not found")
	ErrInvalidDraft = errors.New("invalid lucky number")
	ErrEmptyPatch   = errors.New("no fields to update")
)

// MaxNumberDigits bounds the length of a lucky number.
const MaxNumberDigits = 7

var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// Draft is a lucky number before the repository assigns an ID.
type Draft struct {
	Date       string      `json:"date"`
	Slot       models.Slot `json:"slot"`
	Number     string      `json:"number"`
	RevealTime string      `json:"reveal_time"`
}

// Validate checks every field and reports all problems at once.
func (d Draft) Validate() error {
	var problems []string
	if p := validateDate(d.Date); p != "" {
		problems = append(problems, p)
	}
	if p := validateSlot(d.Slot); p != "" {
		problems = append(problems, p)
	}
	if p := validateNumber(d.Number); p != "" {
		problems = append(problems, p)
	}
	if p := validateRevealTime(d.RevealTime); p != "" {
		problems = append(problems, p)
	}
	return joinProblems(problems)
}

// Patch carries the fields an update changes; nil fields are left alone.
type Patch struct {
	Date       *string      `json:"date,omitempty"`
	Slot       *models.Slot `json:"slot,omitempty"`
	Number     *string      `json:"number,omitempty"`
	RevealTime *string      `json:"reveal_time,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Date == nil && p.Slot == nil && p.Number == nil && p.RevealTime == nil
}

// Validate checks only the fields present in the patch.
func (p Patch) Validate() error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	var problems []string
	if p.Date != nil {
		if msg := validateDate(*p.Date); msg != "" {
			problems = append(problems, msg)
		}
	}
	if p.Slot != nil {
		if msg := validateSlot(*p.Slot); msg != "" {
			problems = append(problems, msg)
		}
	}
	if p.Number != nil {
		if msg := validateNumber(*p.Number); msg != "" {
			problems = append(problems, msg)
		}
	}
	if p.RevealTime != nil {
		if msg := validateRevealTime(*p.RevealTime); msg != "" {
			problems = append(problems, msg)
		}
	}
	return joinProblems(problems)
}

func validateDate(v string) string {
	if !reveal.ValidDateKey(v) {
		return fmt.Sprintf("date %q must be YYYY-MM-DD", v)
	}
	return ""
}

func validateSlot(v models.Slot) string {
	if !v.Valid() {
		return fmt.Sprintf("slot %q must be DAY or NIGHT", v)
	}
	return ""
}

func validateNumber(v string) string {
	switch {
	case v == "":
		return "number is required"
	case !digitsPattern.MatchString(v):
		return "number must contain digits only"
	case len(v) > MaxNumberDigits:
		return fmt.Sprintf("number must be at most %d digits", MaxNumberDigits)
	}
	return ""
}

func validateRevealTime(v string) string {
	if !reveal.ValidClock(v) {
		return fmt.Sprintf("reveal time %q must be HH:MM", v)
	}
	return ""
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(problems, "; "))
}

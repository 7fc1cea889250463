package item

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 4000
)

// Item is a persisted note.
type Item struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Input carries the fields required to create an item.
type Input struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Normalized returns a copy with both fields trimmed and NFC-normalized.
func (in Input) Normalized() Input {
	return Input{
		Title:       normalize(in.Title),
		Description: normalize(in.Description),
	}
}

// Validate reports the first missing or oversized field.
func (in Input) Validate() error {
	if err := checkField("title", in.Title, MaxTitleLen); err != nil {
		return err
	}
	return checkField("description", in.Description, MaxDescriptionLen)
}

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Normalized returns a copy with every present field normalized.
func (p Patch) Normalized() Patch {
	var out Patch
	if p.Title != nil {
		v := normalize(*p.Title)
		out.Title = &v
	}
	if p.Description != nil {
		v := normalize(*p.Description)
		out.Description = &v
	}
	return out
}

// Validate rejects present fields that are blank or too long. An empty patch
// is valid and only refreshes updatedAt.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := checkField("title", *p.Title, MaxTitleLen); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := checkField("description", *p.Description, MaxDescriptionLen); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns it with the patch's present fields replaced.
func (p Patch) Apply(it Item) Item {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	return it
}

// PatchFrom builds a patch that replaces both fields with in.
func PatchFrom(in Input) Patch {
	title, desc := in.Title, in.Description
	return Patch{Title: &title, Description: &desc}
}

func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func checkField(field, value string, max int) error {
	if value == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{Field: field, Reason: "is too long"}
	}
	return nil
}

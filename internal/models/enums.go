package models

import (
	"encoding/json"
	"strings"

	appErrors "github.com/noah-isme/student-management-api/pkg/errors"
)

// Gender is the closed set of genders a student can declare.
type Gender string

// Supported genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

var genderAliases = map[string]Gender{
	"male":   GenderMale,
	"female": GenderFemale,
	"other":  GenderOther,
	"男性":     GenderMale,
	"女性":     GenderFemale,
	"その他":    GenderOther,
}

// ParseGender resolves a canonical value or a localized label.
func ParseGender(raw string) (Gender, error) {
	if g, ok := genderAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return g, nil
	}
	return "", appErrors.InvalidEnum("gender", raw)
}

// Valid reports whether g is one of the supported genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
// A blank value decodes to the zero Gender and is reported as missing by validation.
func (g *Gender) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*g = ""
		return nil
	}
	parsed, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Gender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return appErrors.InvalidEnum("gender", string(data))
	}
	return g.UnmarshalText([]byte(raw))
}

// Status is the enrollment stage of a course. Any value may replace any other.
type Status string

// Enrollment stages in their customary order.
const (
	StatusProvisional Status = "provisional"
	StatusConfirmed   Status = "confirmed"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
)

var statusAliases = map[string]Status{
	"provisional": StatusProvisional,
	"confirmed":   StatusConfirmed,
	"in_progress": StatusInProgress,
	"in-progress": StatusInProgress,
	"completed":   StatusCompleted,
	"仮申込":         StatusProvisional,
	"本申込":         StatusConfirmed,
	"受講中":         StatusInProgress,
	"受講終了":        StatusCompleted,
}

// ParseStatus resolves a canonical value or a localized label.
func ParseStatus(raw string) (Status, error) {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s, nil
	}
	return "", appErrors.InvalidEnum("status", raw)
}

// Valid reports whether s is one of the supported stages.
func (s Status) Valid() bool {
	switch s {
	case StatusProvisional, StatusConfirmed, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return appErrors.InvalidEnum("status", string(data))
	}
	return s.UnmarshalText([]byte(raw))
}

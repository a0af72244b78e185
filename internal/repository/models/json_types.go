package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// StringSlice stores a []string as a JSON array in a CLOB column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// PlanStepResource mirrors the resource objects embedded in a plan step.
type PlanStepResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// PlanStep is the JSON shape of a single learning plan step inside the
// STEPS CLOB column.
type PlanStep struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	Resources   []PlanStepResource `json:"resources,omitempty"`
	ThreadID    string             `json:"threadId,omitempty"`
}

// PlanStepSlice stores []PlanStep as a JSON array in a CLOB column.
type PlanStepSlice []PlanStep

// Value implements driver.Valuer.
func (p PlanStepSlice) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements sql.Scanner.
func (p *PlanStepSlice) Scan(value interface{}) error {
	if value == nil {
		*p = PlanStepSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("PlanStepSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*p = PlanStepSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, p)
}

// Package types provides type definitions for structured data used throughout the resume-intake system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Resume is the canonical resume shape every extraction and consolidation
// completion is expected to produce. All keys are expected to be present,
// possibly holding empty strings or arrays.
type Resume struct {
	FullName       string           `json:"fullName"`
	Contact        Contact          `json:"contact"`
	Summary        string           `json:"summary"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Skills         []string         `json:"skills"`
}

// Contact holds the candidate's contact details
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// WorkExperience represents a single position held by the candidate
type WorkExperience struct {
	JobTitle         string   `json:"jobTitle"`
	Company          string   `json:"company"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Responsibilities []string `json:"responsibilities"`
}

// Education represents a single degree or program
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         GPA    `json:"gpa"`
}

// GPA holds a grade as text. Models emit it either as a string ("3.8/4.0")
// or a bare number (3.8); both decode, and null decodes to "".
type GPA string

// UnmarshalJSON accepts a JSON string, number or null
func (g *GPA) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*g = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GPA(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("gpa must be a string or number: %w", err)
	}
	*g = GPA(n.String())
	return nil
}

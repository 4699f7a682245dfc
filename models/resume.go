package models

import (
	"encoding/json"
	"time"
)

// FlexibleStringSlice can unmarshal from either a string or []string
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*f = arr
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str != "" {
			*f = []string{str}
		} else {
			*f = []string{}
		}
		return nil
	}

	*f = []string{}
	return nil
}

// Resume is an uploaded resume document and the data extracted from it
// @Description Uploaded resume with extracted data
type Resume struct {
	ID            string         `json:"id" firestore:"-" example:"5b0f8f2e-8d1c-4c55-9f7e-1d2b3c4d5e6f"`
	UserID        string         `json:"userId" firestore:"userId"`
	FileName      string         `json:"fileName" firestore:"fileName" example:"jane-doe-cv.pdf"`
	FilePath      string         `json:"-" firestore:"filePath"`
	UploadedAt    time.Time      `json:"uploadedAt" firestore:"uploadedAt"`
	ExtractedData *ExtractedData `json:"extractedData,omitempty" firestore:"extractedData,omitempty"`
}

// ExtractedData is the structured content parsed out of a resume
// @Description Structured resume data
type ExtractedData struct {
	Name            string              `json:"name" firestore:"name" example:"Jane Doe"`
	Email           string              `json:"email" firestore:"email" example:"jane@example.com"`
	Phone           string              `json:"phone" firestore:"phone"`
	Location        string              `json:"location" firestore:"location" example:"Berlin, Germany"`
	LocationCity    string              `json:"locationCity" firestore:"locationCity" example:"Berlin"`
	LocationCountry string              `json:"locationCountry" firestore:"locationCountry" example:"Germany"`
	Skills          FlexibleStringSlice `json:"skills" firestore:"skills"`
	Experience      []Experience        `json:"experience" firestore:"experience"`
	Education       []Education         `json:"education" firestore:"education"`
	Summary         string              `json:"summary" firestore:"summary"`
}

// Experience represents a single work history entry
type Experience struct {
	Title       string `json:"title" firestore:"title"`
	Company     string `json:"company" firestore:"company"`
	Duration    string `json:"duration" firestore:"duration"`
	Description string `json:"description" firestore:"description"`
}

// Education represents educational background
type Education struct {
	Degree      string `json:"degree" firestore:"degree"`
	Institution string `json:"institution" firestore:"institution"`
	Years       string `json:"years" firestore:"years"`
}

// HasCity reports whether the resume carries a city-level location
func (d *ExtractedData) HasCity() bool {
	return d != nil && d.LocationCity != ""
}

// TopSkills returns at most n skills in resume order
func (d *ExtractedData) TopSkills(n int) []string {
	if d == nil {
		return nil
	}
	if len(d.Skills) <= n {
		return d.Skills
	}
	return d.Skills[:n]
}

// ResumeSummary is the short form of a resume used in listings
// @Description Resume list entry
type ResumeSummary struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	UploadedAt time.Time `json:"uploadedAt"`
	Name       string    `json:"name,omitempty"`
	SkillCount int       `json:"skillCount"`
}

// Summary converts the resume to its list form
func (r *Resume) Summary() ResumeSummary {
	s := ResumeSummary{
		ID:         r.ID,
		FileName:   r.FileName,
		UploadedAt: r.UploadedAt,
	}
	if r.ExtractedData != nil {
		s.Name = r.ExtractedData.Name
		s.SkillCount = len(r.ExtractedData.Skills)
	}
	return s
}

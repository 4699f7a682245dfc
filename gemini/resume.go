package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hiremind/backend/logger"
	"github.com/hiremind/backend/models"
	"github.com/hiremind/backend/utils"
)

const resumePrompt = `You are an expert resume parser. Extract the following information from the resume and return it as a valid JSON object.

Required fields:
- name: Full name of the person
- email: Email address
- phone: Phone number (if available)
- location: Current location (city, state, country)
- locationCity: Current City (if available)
- locationCountry: Current Country (if not available, then guess it from resume data)
- skills: Array of technical skills and competencies
- experience: Array of work experience objects with title, company, duration, and description
- education: Array of education objects with degree, institution, and years
- summary: Professional summary or objective (if available)

Guidelines:
- If a field is not found, use null for strings or empty array for arrays
- For experience, extract job title, company name, duration, and a brief description
- For skills, focus on technical skills, programming languages, tools, and technologies
- For location, try to extract the most recent or current location
- Ensure the output is valid JSON that can be parsed

%s

Return only the JSON object, no additional text or formatting.`

// ResumeParser extracts structured resume data using a Generator
type ResumeParser struct {
	gen    Generator
	logger *zap.Logger
}

// NewResumeParser creates a resume parser on top of gen
func NewResumeParser(gen Generator, logger *zap.Logger) *ResumeParser {
	return &ResumeParser{gen: gen, logger: logger.Named("resume-parser")}
}

// Parse sends the document to the model and returns the cleaned extraction.
// Binary documents (PDF) are attached; text documents are inlined.
func (p *ResumeParser) Parse(ctx context.Context, doc *utils.Document) (*models.ExtractedData, error) {
	if doc == nil {
		return nil, errors.New("document is required")
	}

	var (
		text string
		err  error
	)
	switch {
	case len(doc.Data) > 0:
		text, err = p.gen.Generate(ctx,
			fmt.Sprintf(resumePrompt, "The resume is attached as a document."),
			Attachment{MIMEType: doc.MIMEType, Data: doc.Data})
	case strings.TrimSpace(doc.Text) != "":
		text, err = p.gen.Generate(ctx, fmt.Sprintf(resumePrompt, "Resume text:\n"+doc.Text))
	default:
		return nil, errors.New("document is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract resume data: %w", err)
	}

	data, err := parseExtractedData(text)
	if err != nil {
		p.logger.Warn("unparseable resume response",
			zap.Error(err), zap.String("response", logger.TruncateForLog(text, 500)))
		return nil, fmt.Errorf("failed to extract resume data: %w", err)
	}

	p.logger.Info("parsed resume",
		zap.Int("skills", len(data.Skills)),
		zap.Int("experience", len(data.Experience)),
		zap.Bool("hasCity", data.HasCity()))

	return data, nil
}

func parseExtractedData(text string) (*models.ExtractedData, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}

	return cleanExtractedData(decoded), nil
}

// cleanExtractedData normalizes model output: nulls become empty strings,
// blank skills are dropped, and malformed list fields become empty lists.
func cleanExtractedData(m map[string]any) *models.ExtractedData {
	data := &models.ExtractedData{
		Name:            asString(m["name"]),
		Email:           asString(m["email"]),
		Phone:           asString(m["phone"]),
		Location:        asString(m["location"]),
		LocationCity:    asString(m["locationCity"]),
		LocationCountry: asString(m["locationCountry"]),
		Summary:         asString(m["summary"]),
		Skills:          models.FlexibleStringSlice{},
		Experience:      []models.Experience{},
		Education:       []models.Education{},
	}

	if skills, ok := m["skills"].([]any); ok {
		for _, s := range skills {
			if v := asString(s); v != "" {
				data.Skills = append(data.Skills, v)
			}
		}
	}

	if entries, ok := m["experience"].([]any); ok {
		for _, e := range entries {
			obj, ok := e.(map[string]any)
			if !ok {
				continue
			}
			data.Experience = append(data.Experience, models.Experience{
				Title:       asString(obj["title"]),
				Company:     asString(obj["company"]),
				Duration:    asString(obj["duration"]),
				Description: asString(obj["description"]),
			})
		}
	}

	if entries, ok := m["education"].([]any); ok {
		for _, e := range entries {
			obj, ok := e.(map[string]any)
			if !ok {
				continue
			}
			data.Education = append(data.Education, models.Education{
				Degree:      asString(obj["degree"]),
				Institution: asString(obj["institution"]),
				Years:       asString(obj["years"]),
			})
		}
	}

	return data
}

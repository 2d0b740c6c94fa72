package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeforge/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ScoreReport", &ScoreTextFormatter{})
	registry.RegisterFormatter("markdown", "ScoreReport", &ScoreMarkdownFormatter{})
	registry.RegisterFormatter("text", "SuggestOutput", &SuggestTextFormatter{})
	registry.RegisterFormatter("markdown", "SuggestOutput", &SuggestMarkdownFormatter{})
	registry.RegisterFormatter("text", "VersionList", &VersionListTextFormatter{})
	registry.RegisterFormatter("markdown", "VersionList", &VersionListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ScoreReport:
		return "ScoreReport"
	case types.SuggestOutput:
		return "SuggestOutput"
	case []types.ResumeVersion:
		return "VersionList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ScoreTextFormatter handles text formatting for ATS score reports
type ScoreTextFormatter struct{}

func (stf *ScoreTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.ScoreReport)
	if !ok {
		return "", fmt.Errorf("expected ScoreReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS SCORE ===\n\n")
	output.WriteString(fmt.Sprintf("Score: %d/100\n", report.Score))
	output.WriteString(fmt.Sprintf("Baseline: %d\n\n", report.Baseline))

	if len(report.Bonuses) > 0 {
		output.WriteString("Bonuses:\n")
		for _, bonus := range report.Bonuses {
			output.WriteString(fmt.Sprintf("  %-28s %+d (max %d)", bonus.Rule, bonus.Points, bonus.Max))
			if bonus.Detail != "" {
				output.WriteString("  " + bonus.Detail)
			}
			output.WriteString("\n")
		}
	} else {
		output.WriteString("No bonuses earned.\n")
	}

	return output.String(), nil
}

func (stf *ScoreTextFormatter) SupportedType() string {
	return "ScoreReport"
}

// ScoreMarkdownFormatter handles markdown formatting for ATS score reports
type ScoreMarkdownFormatter struct{}

func (smf *ScoreMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.ScoreReport)
	if !ok {
		return "", fmt.Errorf("expected ScoreReport, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# ATS Score\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/100\n\n", report.Score))
	output.WriteString(fmt.Sprintf("**Baseline:** %d\n\n", report.Baseline))

	if len(report.Bonuses) > 0 {
		output.WriteString("## Bonuses\n\n")
		output.WriteString("| Rule | Points | Max | Detail |\n")
		output.WriteString("|------|--------|-----|--------|\n")
		for _, bonus := range report.Bonuses {
			output.WriteString(fmt.Sprintf("| %s | %+d | %d | %s |\n",
				bonus.Rule, bonus.Points, bonus.Max, bonus.Detail))
		}
	} else {
		output.WriteString("No bonuses earned.\n")
	}

	return output.String(), nil
}

func (smf *ScoreMarkdownFormatter) SupportedType() string {
	return "ScoreReport"
}

// SuggestTextFormatter handles text formatting for suggestion results
type SuggestTextFormatter struct{}

func (stf *SuggestTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SuggestOutput)
	if !ok {
		return "", fmt.Errorf("expected SuggestOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== SUGGESTIONS ===\n\n")
	if result.Provider != "" {
		output.WriteString(fmt.Sprintf("Provider: %s", result.Provider))
		if result.Fallback {
			output.WriteString(" (fallback)")
		}
		output.WriteString("\n\n")
	}

	if len(result.Suggestions) == 0 {
		output.WriteString("No suggestions.\n")
		return output.String(), nil
	}

	for i, s := range result.Suggestions {
		output.WriteString(fmt.Sprintf("%d. [%s/%s] %s\n", i+1, s.Type, s.Impact, s.Title))
		output.WriteString("   ")
		output.WriteString(s.Description)
		output.WriteString("\n")
		if len(s.Keywords) > 0 {
			output.WriteString(fmt.Sprintf("   Keywords: %s\n", strings.Join(s.Keywords, ", ")))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (stf *SuggestTextFormatter) SupportedType() string {
	return "SuggestOutput"
}

// SuggestMarkdownFormatter handles markdown formatting for suggestion results
type SuggestMarkdownFormatter struct{}

func (smf *SuggestMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SuggestOutput)
	if !ok {
		return "", fmt.Errorf("expected SuggestOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Suggestions\n\n")
	if result.Provider != "" {
		output.WriteString(fmt.Sprintf("**Provider:** %s", result.Provider))
		if result.Fallback {
			output.WriteString(" _(fallback)_")
		}
		output.WriteString("\n\n")
	}

	if len(result.Suggestions) == 0 {
		output.WriteString("No suggestions.\n")
		return output.String(), nil
	}

	for i, s := range result.Suggestions {
		output.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, s.Title))
		output.WriteString(fmt.Sprintf("**Type:** %s | **Impact:** %s\n\n", s.Type, s.Impact))
		output.WriteString(s.Description)
		output.WriteString("\n\n")
		if len(s.Keywords) > 0 {
			output.WriteString(fmt.Sprintf("**Keywords:** %s\n\n", strings.Join(s.Keywords, ", ")))
		}
	}

	return output.String(), nil
}

func (smf *SuggestMarkdownFormatter) SupportedType() string {
	return "SuggestOutput"
}

// VersionListTextFormatter handles text formatting for version history listings
type VersionListTextFormatter struct{}

func (vtf *VersionListTextFormatter) Format(data any) (string, error) {
	versions, ok := data.([]types.ResumeVersion)
	if !ok {
		return "", fmt.Errorf("expected []ResumeVersion, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== VERSION HISTORY ===\n\n")
	if len(versions) == 0 {
		output.WriteString("No saved versions.\n")
		return output.String(), nil
	}

	for _, v := range versions {
		output.WriteString(fmt.Sprintf("%s  %s  %s\n",
			v.ID, v.Timestamp.Format("2006-01-02 15:04:05"), v.Label))
	}

	return output.String(), nil
}

func (vtf *VersionListTextFormatter) SupportedType() string {
	return "VersionList"
}

// VersionListMarkdownFormatter handles markdown formatting for version history listings
type VersionListMarkdownFormatter struct{}

func (vmf *VersionListMarkdownFormatter) Format(data any) (string, error) {
	versions, ok := data.([]types.ResumeVersion)
	if !ok {
		return "", fmt.Errorf("expected []ResumeVersion, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Version History\n\n")
	if len(versions) == 0 {
		output.WriteString("No saved versions.\n")
		return output.String(), nil
	}

	output.WriteString("| ID | Saved | Label |\n")
	output.WriteString("|----|-------|-------|\n")
	for _, v := range versions {
		output.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			v.ID, v.Timestamp.Format("2006-01-02 15:04:05"), v.Label))
	}

	return output.String(), nil
}

func (vmf *VersionListMarkdownFormatter) SupportedType() string {
	return "VersionList"
}

// GlobalRegistry is the default formatter registry used by output handlers.
var GlobalRegistry = NewFormatterRegistry()

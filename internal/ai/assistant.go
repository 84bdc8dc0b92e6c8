package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const chatSystemPrompt = `You are a helpful assistant for a School Management System app.
The app has features for Dashboard, Attendance, Students, Teachers, Fees, Timetable, Exams, Finance, Reports, etc.
Answer questions about how to manage a school using this app. Be concise and professional.`

// Assistant combines the model client with the cached data context.
type Assistant struct {
	client  Client
	context *ContextProvider
	log     zerolog.Logger
}

func NewAssistant(client Client, provider *ContextProvider, log zerolog.Logger) *Assistant {
	return &Assistant{client: client, context: provider, log: log}
}

// Chat answers a free-form question. pageContext is optional client-side
// context (current page, role) passed through verbatim.
func (a *Assistant) Chat(ctx context.Context, message, pageContext string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message is required")
	}

	var b strings.Builder
	b.WriteString(chatSystemPrompt)
	if pageContext != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(pageContext)
	}
	b.WriteString("\n\nUser Question: ")
	b.WriteString(message)

	return a.client.Generate(ctx, b.String())
}

// AnalystReport generates a markdown report over the cached data snapshot.
func (a *Assistant) AnalystReport(ctx context.Context, reportType, focusArea string) (string, error) {
	data, err := a.context.Context(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to build report context: %w", err)
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report context: %w", err)
	}

	prompt := fmt.Sprintf(`Act as a professional data analyst for a school. Generate a %s report focusing on %s.

Here is the current system data summary:
%s

Please provide a professional report with:
1. Executive Summary
2. Key Metrics Analysis
3. Recommendations

Format the output in clean Markdown.`, reportType, focusArea, encoded)

	return a.client.Generate(ctx, prompt)
}

// DataEntry is a structured record extracted from free text, pending
// user confirmation before it is written anywhere.
type DataEntry struct {
	Intent string         `json:"intent"`
	Data   map[string]any `json:"data"`
}

// ExtractEntry turns a natural-language description into a structured
// entry. The model is asked for raw JSON; fences are stripped defensively
// before parsing.
func (a *Assistant) ExtractEntry(ctx context.Context, text string) (DataEntry, error) {
	if strings.TrimSpace(text) == "" {
		return DataEntry{}, fmt.Errorf("text is required")
	}

	prompt := fmt.Sprintf(`You are a data entry assistant. Extract structured data from the following text into JSON format.

The app has these collections and fields:
1. Students: { firstName, lastName, class, parentName, phone, email }
2. Teachers: { name, subject, phone, email }
3. Classes: { className, section }

Text: %q

Identify the intent (add_student, add_teacher, add_class) and the data.
Return ONLY the raw JSON object, no markdown formatting.`, text)

	response, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return DataEntry{}, err
	}

	var entry DataEntry
	if err := json.Unmarshal([]byte(CleanModelJSON(response)), &entry); err != nil {
		return DataEntry{}, fmt.Errorf("failed to parse model output: %w", err)
	}
	if entry.Intent == "" {
		return DataEntry{}, fmt.Errorf("model output missing intent")
	}
	return entry, nil
}

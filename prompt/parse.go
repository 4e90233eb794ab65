package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chronosynth/chronosynth/core"
)

// Payload is the validated structured output of one agent invocation.
type Payload struct {
	Raw     json.RawMessage
	Summary string
}

// ExtractJSON returns the outermost JSON object in text, tolerating fenced
// or chatty completions by slicing from the first "{" to the last "}".
func ExtractJSON(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return json.RawMessage(trimmed), nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON structure found in completion")
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("extracted candidate is not valid JSON")
	}
	return json.RawMessage(candidate), nil
}

// ParsePayload validates an agent completion against the role's output
// contract and extracts its summary. A missing or empty summary field is a
// validation failure, not a success with gaps.
func ParsePayload(role core.Role, text string) (Payload, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return Payload{}, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{}, fmt.Errorf("completion is not a JSON object: %w", err)
	}

	field := SummaryField(role)
	if field == "" {
		return Payload{}, fmt.Errorf("%w: %q", core.ErrUnknownRole, role)
	}

	rawSummary, ok := fields[field]
	if !ok {
		return Payload{}, fmt.Errorf("completion missing required field %q", field)
	}
	var summary string
	if err := json.Unmarshal(rawSummary, &summary); err != nil {
		return Payload{}, fmt.Errorf("field %q is not a string: %w", field, err)
	}
	if strings.TrimSpace(summary) == "" {
		return Payload{}, fmt.Errorf("field %q is empty", field)
	}

	return Payload{Raw: raw, Summary: summary}, nil
}

// IntegrationPayload mirrors the integration agent's JSON output contract.
type IntegrationPayload struct {
	IntegratedSummary string          `json:"integrated_summary"`
	Contradictions    []string        `json:"contradictions"`
	Themes            []string        `json:"themes"`
	Plan              []core.PlanStep `json:"plan"`
	Metrics           []string        `json:"metrics"`
	NextCheckIn       string          `json:"next_check_in"`
	Confidence        float64         `json:"confidence"`
}

// DecodeIntegration unmarshals a validated integration payload into its
// typed form.
func DecodeIntegration(raw json.RawMessage) (IntegrationPayload, error) {
	var p IntegrationPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return IntegrationPayload{}, fmt.Errorf("decode integration payload: %w", err)
	}
	return p, nil
}

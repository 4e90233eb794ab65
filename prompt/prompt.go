package prompt

import (
	"fmt"
	"strings"

	"github.com/chronosynth/chronosynth/core"
	"github.com/chronosynth/chronosynth/model"
)

// Template returns the instruction block for the given role.
func Template(role core.Role) (string, error) {
	switch role {
	case core.RolePast:
		return pastTemplate, nil
	case core.RolePresent:
		return presentTemplate, nil
	case core.RoleFuture:
		return futureTemplate, nil
	case core.RoleIntegration:
		return integrationTemplate, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownRole, role)
}

// SummaryField names the JSON field that carries a role's one-line summary.
// A completion missing this field fails validation.
func SummaryField(role core.Role) string {
	switch role {
	case core.RolePast:
		return "analysis_summary"
	case core.RolePresent:
		return "state_summary"
	case core.RoleFuture:
		return "projection_summary"
	case core.RoleIntegration:
		return "integrated_summary"
	}
	return ""
}

// IntegrationInputs is the merged, deterministic view of a completed fan-out
// bundle fed to the integration agent. Summaries for unavailable roles stay
// empty; Unavailable lists those roles in canonical order.
type IntegrationInputs struct {
	SessionID      string
	PastSummary    string
	PresentSummary string
	FutureSummary  string
	Unavailable    []core.Role
}

// BuildFanOut composes the model request for one fan-out role from the raw
// user entry and optional recalled memory snippets.
func BuildFanOut(role core.Role, entry string, recalled []string) (model.Request, error) {
	tmpl, err := Template(role)
	if err != nil {
		return model.Request{}, err
	}
	return model.Request{
		Role:   role,
		System: tmpl,
		Prompt: composeBody(entry, contextBlock(recalled)),
	}, nil
}

// BuildIntegration composes the integration request from whichever fan-out
// summaries resolved, explicitly noting unavailable roles so the synthesis
// degrades instead of fabricating missing context.
func BuildIntegration(entry string, in IntegrationInputs) model.Request {
	var lines []string
	if in.SessionID != "" {
		lines = append(lines, "session_id: "+in.SessionID)
	}
	if in.PastSummary != "" {
		lines = append(lines, "past_summary: "+in.PastSummary)
	}
	if in.PresentSummary != "" {
		lines = append(lines, "present_summary: "+in.PresentSummary)
	}
	if in.FutureSummary != "" {
		lines = append(lines, "future_summary: "+in.FutureSummary)
	}
	for _, role := range in.Unavailable {
		lines = append(lines, fmt.Sprintf("unavailable: the %s perspective produced no usable output; do not invent it", role))
	}
	return model.Request{
		Role:   core.RoleIntegration,
		System: integrationTemplate,
		Prompt: composeBody(entry, contextBlock(lines)),
	}
}

// BuildJourneyStage composes the short guidance request for one healing
// journey stage. The entry may be empty for sessions created without an
// ingest run.
func BuildJourneyStage(stage, entry string) model.Request {
	if entry == "" {
		entry = "(none)"
	}
	return model.Request{
		Role:   core.RoleIntegration,
		System: journeyTemplate,
		Prompt: fmt.Sprintf("Stage: %s\n\nUser Entry:\n%s\n\nOffer guidance for this stage only.", stage, entry),
	}
}

func composeBody(entry, context string) string {
	return fmt.Sprintf("User Entry:\n%s\n\nRelevant Context:\n%s\n\n%s", entry, context, formattingRules)
}

func contextBlock(items []string) string {
	if len(items) == 0 {
		return "(no additional context)"
	}
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
	return sb.String()
}

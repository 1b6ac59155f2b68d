package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/regmesh/core"
)

// Disclaimer is the fixed non-advice notice appended to every answer when
// the pipeline enables it.
const Disclaimer = "This information is general regulatory guidance, not legal or " +
	"financial advice. Rules change and individual circumstances differ; verify " +
	"against primary sources or consult a qualified professional before acting."

// defaultBasePrompt is used when the caller supplies no base instruction.
const defaultBasePrompt = "You are a regulatory research assistant. Ground every " +
	"answer in the knowledge graph, state uncertainty explicitly, and never " +
	"present guidance as binding advice."

// BuildInput carries every aspect contributing to one turn's system prompt.
type BuildInput struct {
	BasePrompt        string
	Jurisdictions     []string
	Profile           *core.UserProfile
	AgentID           string
	IncludeDisclaimer bool
	ContextSummary    string
	ContextNodes      []core.ResolvedNode
}

// Context is the prompt metadata handed back to the engine alongside the
// assembled system prompt.
type Context struct {
	Jurisdictions     []string
	Profile           *core.UserProfile
	IncludeDisclaimer bool
}

// BuiltPrompt is the pipeline's output.
type BuiltPrompt struct {
	SystemPrompt string
	Context      Context
}

// Pipeline builds a system prompt plus prompt metadata from aspects.
type Pipeline interface {
	Build(ctx context.Context, in BuildInput) (*BuiltPrompt, error)
}

// AspectPipeline is the default Pipeline: aspects are rendered as prompt
// sections in a fixed order and joined with blank lines. Empty aspects are
// skipped.
type AspectPipeline struct{}

// NewAspectPipeline creates the default pipeline.
func NewAspectPipeline() *AspectPipeline { return &AspectPipeline{} }

// Build implements Pipeline.
func (p *AspectPipeline) Build(_ context.Context, in BuildInput) (*BuiltPrompt, error) {
	base := in.BasePrompt
	if base == "" {
		base = defaultBasePrompt
	}

	jurisdictions := in.Jurisdictions
	if len(jurisdictions) == 0 && in.Profile != nil {
		jurisdictions = in.Profile.Jurisdictions
	}

	sections := []string{base}

	if in.AgentID != "" {
		sections = append(sections, fmt.Sprintf("You are answering as the %q domain agent.", in.AgentID))
	}
	if len(jurisdictions) > 0 {
		sections = append(sections, fmt.Sprintf(
			"Scope all answers to the following jurisdictions: %s.", strings.Join(jurisdictions, ", ")))
	}
	if aspect := profileAspect(in.Profile); aspect != "" {
		sections = append(sections, aspect)
	}
	if in.ContextSummary != "" {
		sections = append(sections, in.ContextSummary)
	}
	if in.IncludeDisclaimer {
		sections = append(sections,
			"Close every answer acknowledging that this is general guidance, not advice.")
	}

	return &BuiltPrompt{
		SystemPrompt: strings.Join(sections, "\n\n"),
		Context: Context{
			Jurisdictions:     jurisdictions,
			Profile:           in.Profile,
			IncludeDisclaimer: in.IncludeDisclaimer,
		},
	}, nil
}

// profileAspect renders the user profile as one prompt section.
func profileAspect(profile *core.UserProfile) string {
	if profile == nil {
		return ""
	}
	var parts []string
	if profile.Persona != "" {
		parts = append(parts, fmt.Sprintf("persona %q", profile.Persona))
	}
	if profile.AgeBand != "" {
		parts = append(parts, fmt.Sprintf("age band %s", profile.AgeBand))
	}
	if profile.IsCompany != nil && *profile.IsCompany {
		parts = append(parts, "acting on behalf of a company")
	}
	if profile.ContributionClass != "" {
		parts = append(parts, fmt.Sprintf("contribution class %s", profile.ContributionClass))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("The user's profile: %s. Tailor depth and terminology accordingly.",
		strings.Join(parts, ", "))
}

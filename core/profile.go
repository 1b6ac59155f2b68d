package core

// Persona is the closed set of user archetypes a profile may declare.
type Persona string

const (
	// PersonaIndividual is a private person researching their own situation.
	PersonaIndividual Persona = "individual"
	// PersonaAdvisor is a professional advising third parties.
	PersonaAdvisor Persona = "advisor"
	// PersonaEmployer is a company-side compliance user.
	PersonaEmployer Persona = "employer"
	// PersonaTrustee is a fiduciary administering on behalf of others.
	PersonaTrustee Persona = "trustee"
)

// UserProfile carries request-scoped user attributes. It is immutable for
// the duration of a turn; the engine never writes to it.
type UserProfile struct {
	Persona           Persona  `json:"persona"`
	Jurisdictions     []string `json:"jurisdictions"`
	AgeBand           string   `json:"age_band,omitempty"`
	IsCompany         *bool    `json:"is_company,omitempty"`
	ContributionClass string   `json:"contribution_class,omitempty"`
}

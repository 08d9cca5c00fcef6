package entity

import "time"

type BriefStatus string

// Brief session lifecycle
const (
	BriefStatusIdle       BriefStatus = "IDLE"       // No active session
	BriefStatusCollecting BriefStatus = "COLLECTING" // Gathering brief data
	BriefStatusReady      BriefStatus = "READY"      // Required fields filled, ready for generation
)

// BriefData is the brief-in-progress: everything collected during the
// conversation that ends up in the final document.
type BriefData struct {
	// Core information
	ProjectName    string `json:"project_name"`
	ProjectGoal    string `json:"project_goal"`
	TargetAudience string `json:"target_audience"`
	ProjectType    string `json:"project_type"`
	Platform       string `json:"platform"`

	// Functionality
	MustHaveFeatures   []string `json:"must_have_features"`
	NiceToHaveFeatures []string `json:"nice_to_have_features"`
	Integrations       []string `json:"integrations"`
	References         []string `json:"references"`

	// Content
	ContentReady string `json:"content_ready"`

	// Constraints
	Deadline    string   `json:"deadline"`
	BudgetRange string   `json:"budget_range"`
	Constraints []string `json:"constraints"`

	// Deliverables
	Deliverables       []string `json:"deliverables"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`

	// Communication
	Stakeholders        string `json:"stakeholders"`
	CommunicationFormat string `json:"communication_format"`

	// Filled by LLM analysis during final generation
	Risks         []string `json:"risks"`
	OpenQuestions []string `json:"open_questions"`

	// Raw conversation input, kept for extra context
	RawMessages []string `json:"raw_messages"`
	LLMAnalysis string   `json:"llm_analysis"`
}

// NewBriefData returns an empty brief with all fields at their zero defaults.
func NewBriefData() *BriefData {
	return &BriefData{}
}

// MissingRequired returns required fields that are still empty.
// Generation must be refused while this list is non-empty.
func (d *BriefData) MissingRequired() []FieldID {
	return d.missingOf(RequiredFields)
}

// MissingRecommended returns recommended fields that are still empty.
// Recommended fields never block generation.
func (d *BriefData) MissingRecommended() []FieldID {
	return d.missingOf(RecommendedFields)
}

func (d *BriefData) missingOf(fields []FieldID) []FieldID {
	var missing []FieldID
	for _, id := range fields {
		if spec, ok := fieldRegistry[id]; ok && !spec.filled(d) {
			missing = append(missing, id)
		}
	}
	return missing
}

// ValidForGeneration reports whether all required fields are filled.
func (d *BriefData) ValidForGeneration() bool {
	return len(d.MissingRequired()) == 0
}

// CompletionPercent returns the share of tracked (required + recommended)
// fields that are filled, floored to an integer percentage.
func (d *BriefData) CompletionPercent() int {
	tracked := make([]FieldID, 0, len(RequiredFields)+len(RecommendedFields))
	tracked = append(tracked, RequiredFields...)
	tracked = append(tracked, RecommendedFields...)

	filled := 0
	for _, id := range tracked {
		if spec, ok := fieldRegistry[id]; ok && spec.filled(d) {
			filled++
		}
	}
	return filled * 100 / len(tracked)
}

// ToMap converts the brief into a plain key/value structure
// for the document renderer.
func (d *BriefData) ToMap() map[string]any {
	return map[string]any{
		"project_name":         d.ProjectName,
		"project_goal":         d.ProjectGoal,
		"target_audience":      d.TargetAudience,
		"project_type":         d.ProjectType,
		"platform":             d.Platform,
		"must_have_features":   d.MustHaveFeatures,
		"nice_to_have":         d.NiceToHaveFeatures,
		"integrations":         d.Integrations,
		"references":           d.References,
		"content_ready":        d.ContentReady,
		"deadline":             d.Deadline,
		"budget_range":         d.BudgetRange,
		"constraints":          d.Constraints,
		"deliverables":         d.Deliverables,
		"acceptance_criteria":  d.AcceptanceCriteria,
		"stakeholders":         d.Stakeholders,
		"communication_format": d.CommunicationFormat,
		"risks":                d.Risks,
		"open_questions":       d.OpenQuestions,
	}
}

// BriefSession wraps one BriefData with lifecycle status and the focus
// field pointer that routes free-text input. One session per user identity.
type BriefSession struct {
	UserID    int64
	Status    BriefStatus
	Data      *BriefData
	Focus     FieldID // field the next free-text message populates; empty when none
	CreatedAt time.Time
	UpdatedAt time.Time
}

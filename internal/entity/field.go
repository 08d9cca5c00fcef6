package entity

import "strings"

// FieldID identifies a single brief field. Free-text routing goes through
// this enum instead of reflection: every field carries a typed setter
// resolved at compile time.
type FieldID string

const (
	FieldProjectName         FieldID = "project_name"
	FieldProjectGoal         FieldID = "project_goal"
	FieldTargetAudience      FieldID = "target_audience"
	FieldProjectType         FieldID = "project_type"
	FieldPlatform            FieldID = "platform"
	FieldMustHaveFeatures    FieldID = "must_have_features"
	FieldNiceToHaveFeatures  FieldID = "nice_to_have_features"
	FieldIntegrations        FieldID = "integrations"
	FieldReferences          FieldID = "references"
	FieldContentReady        FieldID = "content_ready"
	FieldDeadline            FieldID = "deadline"
	FieldBudgetRange         FieldID = "budget_range"
	FieldConstraints         FieldID = "constraints"
	FieldDeliverables        FieldID = "deliverables"
	FieldAcceptanceCriteria  FieldID = "acceptance_criteria"
	FieldStakeholders        FieldID = "stakeholders"
	FieldCommunicationFormat FieldID = "communication_format"
)

// RequiredFields block final document generation while empty.
var RequiredFields = []FieldID{
	FieldProjectGoal,
	FieldProjectType,
	FieldPlatform,
}

// RecommendedFields are tracked for the completion percentage only.
var RecommendedFields = []FieldID{
	FieldDeadline,
	FieldBudgetRange,
	FieldDeliverables,
	FieldMustHaveFeatures,
}

// Scalar truncation caps and the per-message list entry cap.
const (
	MaxLongFieldLen  = 1000 // long-form text: goal
	MaxShortFieldLen = 500  // everything else scalar
	MaxEntriesPerMsg = 10
)

type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldList
)

type fieldSpec struct {
	label  string // display name shown to the user
	kind   FieldKind
	maxLen int
	set    func(*BriefData, string)
	add    func(*BriefData, []string)
	filled func(*BriefData) bool
}

var fieldRegistry = map[FieldID]fieldSpec{
	FieldProjectName: {
		label:  "название проекта",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.ProjectName = v },
		filled: func(d *BriefData) bool { return d.ProjectName != "" },
	},
	FieldProjectGoal: {
		label:  "цель проекта",
		kind:   FieldScalar,
		maxLen: MaxLongFieldLen,
		set:    func(d *BriefData, v string) { d.ProjectGoal = v },
		filled: func(d *BriefData) bool { return d.ProjectGoal != "" },
	},
	FieldTargetAudience: {
		label:  "целевая аудитория",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.TargetAudience = v },
		filled: func(d *BriefData) bool { return d.TargetAudience != "" },
	},
	FieldProjectType: {
		label:  "тип проекта",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.ProjectType = v },
		filled: func(d *BriefData) bool { return d.ProjectType != "" },
	},
	FieldPlatform: {
		label:  "платформа",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.Platform = v },
		filled: func(d *BriefData) bool { return d.Platform != "" },
	},
	FieldMustHaveFeatures: {
		label:  "основной функционал",
		kind:   FieldList,
		add:    func(d *BriefData, v []string) { d.MustHaveFeatures = append(d.MustHaveFeatures, v...) },
		filled: func(d *BriefData) bool { return len(d.MustHaveFeatures) > 0 },
	},
	FieldNiceToHaveFeatures: {
		label:  "желательные функции",
		kind:   FieldList,
		add:    func(d *BriefData, v []string) { d.NiceToHaveFeatures = append(d.NiceToHaveFeatures, v...) },
		filled: func(d *BriefData) bool { return len(d.NiceToHaveFeatures) > 0 },
	},
	FieldIntegrations: {
		label:  "интеграции",
		kind:   FieldList,
		add:    func(d *BriefData, v []string) { d.Integrations = append(d.Integrations, v...) },
		filled: func(d *BriefData) bool { return len(d.Integrations) > 0 },
	},
	FieldReferences: {
		label:  "референсы",
		kind:   FieldList,
		add:    func(d *BriefData, v []string) { d.References = append(d.References, v...) },
		filled: func(d *BriefData) bool { return len(d.References) > 0 },
	},
	FieldContentReady: {
		label:  "готовность контента",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.ContentReady = v },
		filled: func(d *BriefData) bool { return d.ContentReady != "" },
	},
	FieldDeadline: {
		label:  "сроки",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.Deadline = v },
		filled: func(d *BriefData) bool { return d.Deadline != "" },
	},
	FieldBudgetRange: {
		label:  "бюджет",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.BudgetRange = v },
		filled: func(d *BriefData) bool { return d.BudgetRange != "" },
	},
	FieldConstraints: {
		label:  "ограничения",
		kind:   FieldList,
		add:    func(d *BriefData, v []string) { d.Constraints = append(d.Constraints, v...) },
		filled: func(d *BriefData) bool { return len(d.Constraints) > 0 },
	},
	FieldDeliverables: {
		label:  "ожидаемые результаты",
		kind:   FieldList,
		add:    func(d *BriefData, v []string) { d.Deliverables = append(d.Deliverables, v...) },
		filled: func(d *BriefData) bool { return len(d.Deliverables) > 0 },
	},
	FieldAcceptanceCriteria: {
		label:  "критерии приёмки",
		kind:   FieldList,
		add:    func(d *BriefData, v []string) { d.AcceptanceCriteria = append(d.AcceptanceCriteria, v...) },
		filled: func(d *BriefData) bool { return len(d.AcceptanceCriteria) > 0 },
	},
	FieldStakeholders: {
		label:  "кто принимает решения",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.Stakeholders = v },
		filled: func(d *BriefData) bool { return d.Stakeholders != "" },
	},
	FieldCommunicationFormat: {
		label:  "формат связи",
		kind:   FieldScalar,
		maxLen: MaxShortFieldLen,
		set:    func(d *BriefData, v string) { d.CommunicationFormat = v },
		filled: func(d *BriefData) bool { return d.CommunicationFormat != "" },
	},
}

// Valid reports whether the field identifier is known.
func (f FieldID) Valid() bool {
	_, ok := fieldRegistry[f]
	return ok
}

// Label returns the user-facing display name of the field.
func (f FieldID) Label() string {
	if spec, ok := fieldRegistry[f]; ok {
		return spec.label
	}
	return string(f)
}

// Kind returns whether the field holds a single value or a list.
func (f FieldID) Kind() FieldKind {
	return fieldRegistry[f].kind
}

// ApplyInput routes a free-text message into the field: a scalar field is
// overwritten with the truncated text, a list field receives up to
// MaxEntriesPerMsg parsed entries appended in order.
func (d *BriefData) ApplyInput(field FieldID, text string) error {
	spec, ok := fieldRegistry[field]
	if !ok {
		return ErrUnknownField
	}

	switch spec.kind {
	case FieldScalar:
		spec.set(d, truncate(strings.TrimSpace(text), spec.maxLen))
	case FieldList:
		entries := ParseListEntries(text)
		if len(entries) > MaxEntriesPerMsg {
			entries = entries[:MaxEntriesPerMsg]
		}
		spec.add(d, entries)
	}
	return nil
}

// ParseListEntries splits user input into list entries: one entry per
// non-blank line, falling back to comma separation when the whole message
// is a single line containing commas.
func ParseListEntries(text string) []string {
	var entries []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}

	if len(entries) == 1 && strings.Contains(entries[0], ",") {
		parts := strings.Split(entries[0], ",")
		entries = entries[:0]
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				entries = append(entries, part)
			}
		}
	}
	return entries
}

// truncate cuts the string to max characters without splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

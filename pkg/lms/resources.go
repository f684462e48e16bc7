package lms

import (
	"encoding/json"
	"fmt"

	"github.com/akiliapp/lms/pkg/api"
)

// Resource describes how a kind is listed and which field sets mutate it.
type Resource struct {
	Kind api.Kind

	// Columns are the row keys shown in tables, in order.
	Columns []string

	// NewCreate and NewUpdate return empty field sets for save and update.
	NewCreate func() any
	NewUpdate func() any
}

// Managed resources, in menu order.
var Resources = []Resource{
	{
		Kind:      api.KindModule,
		Columns:   []string{"id", "code", "name", "description"},
		NewCreate: func() any { return &ModuleFields{} },
		NewUpdate: func() any { return &ModuleFields{} },
	},
	{
		Kind:      api.KindLearningMaterial,
		Columns:   []string{"id", "module_id", "title", "type", "media"},
		NewCreate: func() any { return &MaterialFields{} },
		NewUpdate: func() any { return &MaterialFields{} },
	},
	{
		Kind:      api.KindQuiz,
		Columns:   []string{"id", "module_id", "name", "question", "correct_option"},
		NewCreate: func() any { return &QuizFields{} },
		NewUpdate: func() any { return &QuizFields{} },
	},
	{
		Kind:      api.KindCertificate,
		Columns:   []string{"id", "user_id", "created_at"},
		NewCreate: func() any { return &CertificateFields{} },
		NewUpdate: func() any { return &CertificateFields{} },
	},
	{
		Kind:      api.KindAssignment,
		Columns:   []string{"id", "user_id", "module_id", "title", "document"},
		NewCreate: func() any { return &AssignmentFields{} },
		NewUpdate: func() any { return &AssignmentFields{} },
	},
	{
		Kind:      api.KindUser,
		Columns:   []string{"id", "name", "email", "phone", "role"},
		NewCreate: func() any { return &NewUserFields{} },
		NewUpdate: func() any { return &UserFields{} },
	},
}

// ResourceFor returns the resource description of kind.
func ResourceFor(kind api.Kind) (Resource, bool) {
	for _, r := range Resources {
		if r.Kind == kind {
			return r, true
		}
	}
	return Resource{}, false
}

// DecodeFields fills a fresh field set from a generic map, as read from
// --set flags or a YAML file. Values are converted through JSON, so numeric
// strings are accepted for ids.
func DecodeFields(newFields func() any, values map[string]any) (any, error) {
	fields := newFields()
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	if err := json.Unmarshal(data, fields); err != nil {
		return nil, fmt.Errorf("invalid fields: %w", err)
	}
	return fields, nil
}

// ToMap converts a record to its JSON object form.
func ToMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

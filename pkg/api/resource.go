package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/akiliapp/lms/pkg/envelope"
)

// Kind identifies a resource family and its URL prefix.
type Kind struct {
	Name   string
	Plural string
	Path   string
}

// Resource kinds exposed by the backend.
var (
	KindModule           = Kind{Name: "module", Plural: "modules", Path: "/module"}
	KindLearningMaterial = Kind{Name: "learning material", Plural: "learning materials", Path: "/learningMaterial"}
	KindQuiz             = Kind{Name: "quiz", Plural: "quizzes", Path: "/quiz"}
	KindCertificate      = Kind{Name: "certificate", Plural: "certificates", Path: "/certificate"}
	KindAssignment       = Kind{Name: "assignment", Plural: "assignments", Path: "/assignment"}
	KindUser             = Kind{Name: "user", Plural: "users", Path: "/users"}
	KindUserModule       = Kind{Name: "user module", Plural: "user modules", Path: "/userModule"}
	KindQuizAnswer       = Kind{Name: "quiz answer", Plural: "quiz answers", Path: "/quizAnswer"}
)

// Kinds returns every resource kind.
func Kinds() []Kind {
	return []Kind{
		KindModule, KindLearningMaterial, KindQuiz, KindCertificate,
		KindAssignment, KindUser, KindUserModule, KindQuizAnswer,
	}
}

// KindByName looks a kind up by its singular or plural name or its path.
func KindByName(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if name == k.Name || name == k.Plural || name == k.Path || "/"+name == k.Path {
			return k, true
		}
	}
	return Kind{}, false
}

// ListParams selects one page of a listing.
type ListParams struct {
	Page    int
	PerPage int
	Filters url.Values
}

// Values renders the query string for a list call. paginate=true is always
// sent; per_page falls back to defaultPerPage unless set by PerPage or Filters.
func (p ListParams) Values(defaultPerPage int) url.Values {
	q := url.Values{}
	for k, vs := range p.Filters {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("paginate", "true")
	switch {
	case p.PerPage > 0:
		q.Set("per_page", strconv.Itoa(p.PerPage))
	case q.Get("per_page") == "":
		q.Set("per_page", strconv.Itoa(defaultPerPage))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	return q
}

// Form methods understood by iformAction.
const (
	MethodSave   = "save"
	MethodUpdate = "update"
	MethodDelete = "delete"
)

// Form is the body of an iformAction call.
type Form map[string]any

// Method returns the form_method of f.
func (f Form) Method() string {
	s, _ := f["form_method"].(string)
	return s
}

// ID returns the id carried by f, or "".
func (f Form) ID() string {
	return envelope.String(f["id"])
}

// SaveForm builds a create form from fields, a map or a struct with json tags.
func SaveForm(fields any) (Form, error) {
	f, err := toForm(fields)
	if err != nil {
		return nil, err
	}
	f["form_method"] = MethodSave
	return f, nil
}

// UpdateForm builds an update form for the entity id.
func UpdateForm(id string, fields any) (Form, error) {
	if id == "" {
		return nil, errors.New("update requires an id")
	}
	f, err := toForm(fields)
	if err != nil {
		return nil, err
	}
	f["form_method"] = MethodUpdate
	f["id"] = formID(id)
	return f, nil
}

// DeleteForm builds a delete form carrying only the id.
func DeleteForm(id string) Form {
	return Form{"form_method": MethodDelete, "id": formID(id)}
}

func toForm(fields any) (Form, error) {
	switch v := fields.(type) {
	case nil:
		return Form{}, nil
	case Form:
		return copyForm(v), nil
	case map[string]any:
		return copyForm(v), nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form fields: %w", err)
	}
	f := Form{}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("form fields must be an object: %w", err)
	}
	return f, nil
}

func copyForm(m map[string]any) Form {
	f := make(Form, len(m)+2)
	for k, v := range m {
		f[k] = v
	}
	return f
}

// formID sends numeric ids as numbers, as the backend stores them.
func formID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// Resource is the client for one resource kind.
type Resource struct {
	client *Client
	kind   Kind
}

// Kind returns the resource kind.
func (r *Resource) Kind() Kind {
	return r.kind
}

// List fetches one page.
func (r *Resource) List(ctx context.Context, p ListParams) (*envelope.Envelope, error) {
	return r.client.get(ctx, r.kind.Path+"/ilist", p.Values(r.client.perPage))
}

// Get fetches a single entity.
func (r *Resource) Get(ctx context.Context, id string) (*envelope.Envelope, error) {
	return r.client.get(ctx, r.kind.Path+"/iget", url.Values{"id": {id}})
}

// Mutate submits a save, update or delete form.
func (r *Resource) Mutate(ctx context.Context, form Form) (*envelope.Envelope, error) {
	switch form.Method() {
	case MethodSave, MethodUpdate, MethodDelete:
	default:
		return nil, fmt.Errorf("unknown form_method %q", form.Method())
	}
	return r.client.post(ctx, r.kind.Path+"/iformAction", nil, form)
}

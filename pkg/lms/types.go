package lms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/akiliapp/lms/pkg/envelope"
)

// ID is an entity id. The backend sends numeric ids, sometimes as strings.
type ID string

func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a number, a string or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.(type) {
	case string, float64:
		*id = ID(envelope.String(v))
		return nil
	}
	return fmt.Errorf("invalid id %s", data)
}

// MarshalJSON writes numeric ids as numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Number is a float that also accepts numeric strings. Anything else
// decodes as zero.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f, _ := envelope.Number(v)
	*n = Number(f)
	return nil
}

// QuizOption is one answer choice.
type QuizOption struct {
	Option string `json:"option" validate:"required,notblank"`
	Value  string `json:"value" validate:"required,notblank"`
}

// QuizOptions accepts an array of options or a JSON string holding one.
type QuizOptions []QuizOption

func (o *QuizOptions) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			*o = nil
			return nil
		}
		data = []byte(s)
	}
	var opts []QuizOption
	if err := json.Unmarshal(data, &opts); err != nil {
		*o = nil
		return nil
	}
	*o = opts
	return nil
}

// Module is a course module.
type Module struct {
	ID          ID     `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Initials returns up to two alphanumeric characters of the code or name.
func (m Module) Initials() string {
	src := m.Code
	if src == "" {
		src = m.Name
	}
	var b strings.Builder
	for _, r := range src {
		if r < 128 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 2 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "-"
	}
	return strings.ToUpper(b.String())
}

// Material types.
const (
	MaterialDocument = "document"
	MaterialMedia    = "media"
)

// LearningMaterial is a document or media item attached to a module.
type LearningMaterial struct {
	ID          ID     `json:"id"`
	ModuleID    ID     `json:"module_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Media       string `json:"media,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Quiz is a single question belonging to a module.
type Quiz struct {
	ID            ID          `json:"id"`
	ModuleID      ID          `json:"module_id"`
	Name          string      `json:"name,omitempty"`
	Question      string      `json:"question"`
	Options       QuizOptions `json:"options"`
	CorrectOption string      `json:"correct_option,omitempty"`
}

// Certificate is a PDF certificate issued to a user.
type Certificate struct {
	ID          ID     `json:"id"`
	UserID      ID     `json:"user_id"`
	Certificate string `json:"certificate,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Assignment is a document assigned to a user for a module.
type Assignment struct {
	ID           ID     `json:"id"`
	UserID       ID     `json:"user_id"`
	ModuleID     ID     `json:"module_id"`
	Title        string `json:"title"`
	Document     string `json:"document,omitempty"`
	DocumentURL  string `json:"document_url,omitempty"`
	DocumentPath string `json:"document_path,omitempty"`
	Path         string `json:"path,omitempty"`
	FileURL      string `json:"file_url,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// DocumentRef returns the first document location the server filled in.
func (a Assignment) DocumentRef() string {
	for _, s := range []string{a.DocumentURL, a.Path, a.Document, a.DocumentPath, a.FileURL} {
		if s != "" {
			return s
		}
	}
	return ""
}

// User is an account.
type User struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at,omitempty"`
}

// UserModule is an enrollment of a user in a module.
type UserModule struct {
	ID       ID      `json:"id"`
	UserID   ID      `json:"user_id"`
	ModuleID ID      `json:"module_id"`
	Progress Number  `json:"progress"`
	Module   *Module `json:"module,omitempty"`
}

// QuizAnswer is a stored answer to one quiz question.
type QuizAnswer struct {
	ID         ID     `json:"id"`
	UserID     ID     `json:"user_id"`
	QuestionID ID     `json:"question_id"`
	Answer     string `json:"answer"`
}

// ModuleProgress is a user's progress through one module.
type ModuleProgress struct {
	ModuleID string  `json:"module_id"`
	Code     string  `json:"code,omitempty"`
	Name     string  `json:"name"`
	Progress float64 `json:"progress"`
}

// Completed reports whether the module is finished.
func (p ModuleProgress) Completed() bool {
	return p.Progress >= 100
}

// QuizResult is the outcome of one answered question.
type QuizResult struct {
	QuestionID    string `json:"question_id,omitempty"`
	Question      string `json:"question"`
	YourAnswer    string `json:"your_answer"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	IsCorrect     *bool  `json:"is_correct,omitempty"`
}

// QuizResults is a user's results for a module's quiz.
type QuizResults struct {
	Score *float64     `json:"score,omitempty"`
	Total *float64     `json:"total,omitempty"`
	Items []QuizResult `json:"items"`
}

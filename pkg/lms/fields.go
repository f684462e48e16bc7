package lms

// ModuleFields creates or updates a module.
type ModuleFields struct {
	Name        string `json:"name" yaml:"name" validate:"required,notblank"`
	Code        string `json:"code" yaml:"code" validate:"required,notblank"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// MaterialFields creates or updates a learning material.
type MaterialFields struct {
	ModuleID    ID     `json:"module_id" yaml:"module_id" validate:"required"`
	Title       string `json:"title" yaml:"title" validate:"required,notblank"`
	Description string `json:"description,omitempty" yaml:"description"`
	Type        string `json:"type" yaml:"type" validate:"required,oneof=document media"`
	Media       string `json:"media,omitempty" yaml:"media"`
}

// QuizFields creates or updates a quiz question.
type QuizFields struct {
	ModuleID      ID          `json:"module_id" yaml:"module_id" validate:"required"`
	Name          string      `json:"name,omitempty" yaml:"name"`
	Question      string      `json:"question" yaml:"question" validate:"required,notblank"`
	Options       QuizOptions `json:"options" yaml:"options" validate:"required,min=2,dive"`
	CorrectOption string      `json:"correct_option" yaml:"correct_option" validate:"required,notblank"`
}

// CertificateFields issues a certificate. Certificate is a base64 PDF data URI.
type CertificateFields struct {
	UserID      ID     `json:"user_id" yaml:"user_id" validate:"required"`
	Certificate string `json:"certificate" yaml:"certificate" validate:"required,pdf_data_uri"`
}

// AssignmentFields creates or updates an assignment.
type AssignmentFields struct {
	UserID   ID     `json:"user_id" yaml:"user_id" validate:"required"`
	ModuleID ID     `json:"module_id" yaml:"module_id" validate:"required"`
	Title    string `json:"title" yaml:"title" validate:"required,notblank"`
	Document string `json:"document,omitempty" yaml:"document"`
}

// NewUserFields creates a user. A password is required.
type NewUserFields struct {
	Name     string `json:"name" yaml:"name" validate:"required,notblank"`
	Email    string `json:"email" yaml:"email" validate:"required,email"`
	Password string `json:"password" yaml:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" yaml:"phone"`
	Role     string `json:"role" yaml:"role" validate:"required,role"`
}

// UserFields updates a user. An empty password leaves it unchanged.
type UserFields struct {
	Name     string `json:"name" yaml:"name" validate:"required,notblank"`
	Email    string `json:"email" yaml:"email" validate:"required,email"`
	Password string `json:"password,omitempty" yaml:"password" validate:"omitempty,min=6"`
	Phone    string `json:"phone,omitempty" yaml:"phone"`
	Role     string `json:"role" yaml:"role" validate:"required,role"`
}

// RegisterFields is the public self-registration form.
type RegisterFields struct {
	Name     string `json:"name" yaml:"name" validate:"required,notblank"`
	Email    string `json:"email" yaml:"email" validate:"required,email"`
	Password string `json:"password" yaml:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" yaml:"phone"`
}

// EnrollmentFields enrolls a user in a module.
type EnrollmentFields struct {
	UserID   ID `json:"user_id" yaml:"user_id" validate:"required"`
	ModuleID ID `json:"module_id" yaml:"module_id" validate:"required"`
}

// Answer is one submitted quiz answer.
type Answer struct {
	QuestionID ID     `json:"question_id" yaml:"question_id" validate:"required"`
	Answer     string `json:"answer" yaml:"answer" validate:"required,notblank"`
}

// AnswerFields submits answers for a module's quiz.
type AnswerFields struct {
	UserID  ID       `json:"user_id" yaml:"user_id" validate:"required"`
	Answers []Answer `json:"answers" yaml:"answers" validate:"required,min=1,dive"`
}

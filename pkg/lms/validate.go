package lms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag   = "notblank"
	pdfDataURITag = "pdf_data_uri"
	roleTag       = "role"
)

// PDFDataURIPrefix starts every certificate payload.
const PDFDataURIPrefix = "data:application/pdf;base64,"

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON field names, which are also the backend form field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(pdfDataURITag, pdfDataURIValidation)
	_ = validate.RegisterValidation(roleTag, roleValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, pdfDataURITag, roleTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case pdfDataURITag:
		return fe.Field() + " must be a base64 PDF data URI"
	case roleTag:
		return fe.Field() + " must be User or Admin"
	default:
		return fe.Field() + " is invalid"
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	id, ok := fl.Field().Interface().(ID)
	return ok && strings.TrimSpace(string(id)) != ""
}

func pdfDataURIValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && strings.HasPrefix(s, PDFDataURIPrefix) && len(s) > len(PDFDataURIPrefix)
}

func roleValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "admin", "administrator":
		return true
	}
	return false
}

// FieldError is one failed field check.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors lists every failed check of a field set.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a field set. Values that are not structs (plain maps, nil)
// are accepted as-is. The returned error is FieldErrors.
func Validate(fields any) error {
	if fields == nil {
		return nil
	}
	v := reflect.ValueOf(fields)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := validate.Struct(v.Interface())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(fe),
			Message: fe.Translate(translator),
		})
	}
	return out
}

// fieldPath drops the struct name from the namespace: "QuizFields.options[0].value"
// becomes "options[0].value".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

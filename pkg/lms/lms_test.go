package lms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akiliapp/lms/pkg/api"
)

func TestID_JSON(t *testing.T) {
	var rec struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"x-1","c":null}`), &rec))
	assert.Equal(t, ID("12"), rec.A)
	assert.Equal(t, ID("x-1"), rec.B)
	assert.Equal(t, ID(""), rec.C)

	var bad ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &bad))

	out, err := json.Marshal(map[string]ID{"n": "42", "s": "abc", "z": "007"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":42,"s":"abc","z":"007"}`, string(out))
}

func TestRecords_DecodeLeniently(t *testing.T) {
	var um UserModule
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","user_id":5,"module_id":"9","progress":"75.5","module":{"id":9,"code":"HMU08001","name":"IP"}}`), &um))
	assert.Equal(t, Number(75.5), um.Progress)
	assert.Equal(t, ID("9"), um.Module.ID)

	var q Quiz
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"options":"[{\"option\":\"A\",\"value\":\"Yes\"}]"}`), &q))
	assert.Equal(t, QuizOptions{{Option: "A", Value: "Yes"}}, q.Options)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"options":"garbage"}`), &q))
	assert.Nil(t, q.Options)
}

func TestModule_Initials(t *testing.T) {
	assert.Equal(t, "HM", Module{Code: "hmu-08001"}.Initials())
	assert.Equal(t, "IP", Module{Name: "IP management"}.Initials())
	assert.Equal(t, "-", Module{}.Initials())
}

func TestAssignment_DocumentRef(t *testing.T) {
	assert.Equal(t, "/files/a.pdf", Assignment{Path: "/files/a.pdf", Document: "b.pdf"}.DocumentRef())
	assert.Equal(t, "b.pdf", Assignment{Document: "b.pdf"}.DocumentRef())
	assert.Empty(t, Assignment{}.DocumentRef())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		fields any
		want   []string
	}{
		{"valid module", &ModuleFields{Name: "Intro", Code: "M1"}, nil},
		{"missing module code", ModuleFields{Name: "Intro"}, []string{"code"}},
		{"blank name", &ModuleFields{Name: "   ", Code: "M1"}, []string{"name"}},
		{"material type", &MaterialFields{ModuleID: "1", Title: "T", Type: "video"}, []string{"type"}},
		{"quiz options", &QuizFields{ModuleID: "1", Question: "Q?", CorrectOption: "A", Options: []QuizOption{{Option: "A", Value: "x"}}}, []string{"options"}},
		{"quiz option value", &QuizFields{ModuleID: "1", Question: "Q?", CorrectOption: "A", Options: []QuizOption{{Option: "A", Value: "x"}, {Option: "B"}}}, []string{"options[1].value"}},
		{"certificate uri", &CertificateFields{UserID: "1", Certificate: "data:image/png;base64,AA"}, []string{"certificate"}},
		{"valid certificate", &CertificateFields{UserID: "1", Certificate: PDFDataURIPrefix + "JVBERi0="}, nil},
		{"user email and password", &NewUserFields{Name: "A", Email: "nope", Role: "User"}, []string{"email", "password"}},
		{"user role", &UserFields{Name: "A", Email: "a@b.co", Role: "guest"}, []string{"role"}},
		{"update without password", &UserFields{Name: "A", Email: "a@b.co", Role: "admin"}, nil},
		{"enrollment", &EnrollmentFields{UserID: "1"}, []string{"module_id"}},
		{"no answers", &AnswerFields{UserID: "1"}, []string{"answers"}},
		{"map passes", map[string]any{"anything": 1}, nil},
		{"nil passes", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fields)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var fe FieldErrors
			require.ErrorAs(t, err, &fe)
			var got []string
			for _, e := range fe {
				got = append(got, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_MessagesUseJSONNames(t *testing.T) {
	err := Validate(&ModuleFields{})
	require.Error(t, err)
	assert.Equal(t, "name is a required field; code is a required field", err.Error())
}

func TestDecodeFields(t *testing.T) {
	res, ok := ResourceFor(api.KindLearningMaterial)
	require.True(t, ok)

	fields, err := DecodeFields(res.NewCreate, map[string]any{
		"module_id": "4",
		"title":     "Slides",
		"type":      "document",
		"ignored":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, &MaterialFields{ModuleID: "4", Title: "Slides", Type: "document"}, fields)
	assert.NoError(t, Validate(fields))

	_, ok = ResourceFor(api.KindQuizAnswer)
	assert.False(t, ok)
}

func TestFilter(t *testing.T) {
	rows := []ModuleProgress{
		{ModuleID: "1", Name: "A", Progress: 0},
		{ModuleID: "2", Name: "B", Progress: 99.5},
		{ModuleID: "3", Name: "C", Progress: 100},
	}

	match := func(f *Filter) []string {
		var ids []string
		for _, r := range rows {
			ok, err := f.Match(r)
			require.NoError(t, err)
			if ok {
				ids = append(ids, r.ModuleID)
			}
		}
		return ids
	}

	all, err := TabFilter(TabAll)
	require.NoError(t, err)
	assert.Nil(t, all)
	assert.Equal(t, []string{"1", "2", "3"}, match(all))

	active, err := TabFilter(TabActive)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, match(active))

	expired, err := TabFilter(TabExpired)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, match(expired))

	byName, err := CompileFilter(`name in ["A", "C"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, match(And(byName, active)))

	_, err = TabFilter("archived")
	assert.Error(t, err)

	_, err = CompileFilter("progress <")
	assert.Error(t, err)
}

func TestTabFilter_RawRows(t *testing.T) {
	active, err := TabFilter(TabActive)
	require.NoError(t, err)
	expired, err := TabFilter(TabExpired)
	require.NoError(t, err)

	tests := []struct {
		name    string
		row     map[string]any
		active  bool
		expired bool
	}{
		{"missing progress", map[string]any{"id": 1, "name": "Algebra"}, true, false},
		{"null progress", map[string]any{"id": 2, "progress": nil}, true, false},
		{"numeric string", map[string]any{"id": 3, "progress": "40"}, true, false},
		{"complete string", map[string]any{"id": 4, "progress": "100"}, false, true},
		{"garbage", map[string]any{"id": 5, "progress": "n/a"}, true, false},
		{"number", map[string]any{"id": 6, "progress": float64(100)}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := active.Match(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.active, ok)

			ok, err = expired.Match(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.expired, ok)
		})
	}

	where, err := CompileFilter(`num(progress) > 30 && name == "Algebra"`)
	require.NoError(t, err)
	ok, err := where.Match(map[string]any{"name": "Algebra", "progress": "45"})
	require.NoError(t, err)
	assert.True(t, ok)
}

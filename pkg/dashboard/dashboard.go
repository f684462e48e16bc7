// Package dashboard composes resource calls into the learner and admin
// dashboard views: module lookups with content counts, a learner's modules
// with progress, enrollment, certificates, assignments and quiz answers.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/envelope"
	"github.com/akiliapp/lms/pkg/lms"
	"github.com/akiliapp/lms/pkg/logging"
	"github.com/akiliapp/lms/pkg/session"
)

// Page sizes used by the dashboard views.
const (
	ModuleListPerPage = 6
	LookupPerPage     = 5
	EnrichPerPage     = 100
	MinePerPage       = 50
)

// maxLookupPages bounds the FindModule page walk.
const maxLookupPages = 200

// ErrModuleNotFound is returned when a module exists on no page and iget
// does not know it either.
var ErrModuleNotFound = errors.New("module not found")

// Service runs dashboard queries against one client.
type Service struct {
	client   *api.Client
	progress *session.ProgressCache
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProgressCache stores every MyModules answer in c.
func WithProgressCache(c *session.ProgressCache) Option {
	return func(s *Service) {
		s.progress = c
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a dashboard service.
func New(client *api.Client, opts ...Option) *Service {
	s := &Service{client: client, logger: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// list fetches a page and turns a rejected envelope into an error.
func (s *Service) list(ctx context.Context, kind api.Kind, p api.ListParams) (*envelope.Envelope, error) {
	env, err := s.client.Resource(kind).List(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return env, nil
}

// Counts are the content totals of one module.
type Counts struct {
	Documents int `json:"documents"`
	Media     int `json:"media"`
	Quizzes   int `json:"quizzes"`
}

// ModuleCounts asks for one row of each content list concurrently and reads
// the totals from the page metadata.
func (s *Service) ModuleCounts(ctx context.Context, moduleID string) (Counts, error) {
	var counts Counts
	g, ctx := errgroup.WithContext(ctx)

	total := func(kind api.Kind, filters url.Values, dst *int) {
		g.Go(func() error {
			env, err := s.list(ctx, kind, api.ListParams{Page: 1, PerPage: 1, Filters: filters})
			if err != nil {
				return fmt.Errorf("count %s: %w", kind.Plural, err)
			}
			*dst = envelope.ExtractMeta(env.Body(), 1).Total
			return nil
		})
	}
	total(api.KindLearningMaterial, url.Values{"module_id": {moduleID}, "type": {lms.MaterialDocument}}, &counts.Documents)
	total(api.KindLearningMaterial, url.Values{"module_id": {moduleID}, "type": {lms.MaterialMedia}}, &counts.Media)
	total(api.KindQuiz, url.Values{"module_id": {moduleID}}, &counts.Quizzes)

	if err := g.Wait(); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

// FindModule walks the module listing until id is found or the last page is
// reached, then falls back to iget.
func (s *Service) FindModule(ctx context.Context, id string) (*lms.Module, error) {
	for page := 1; page <= maxLookupPages; page++ {
		env, err := s.client.Resource(api.KindModule).List(ctx, api.ListParams{Page: page, PerPage: LookupPerPage})
		if err != nil {
			return nil, err
		}
		if !env.OK() {
			break
		}
		for _, raw := range env.List() {
			m, ok := raw.(map[string]any)
			if ok && sameID(envelope.Field(m, "id"), id) {
				return moduleFrom(m)
			}
		}
		if page >= envelope.ExtractMeta(env.Body(), LookupPerPage).LastPage {
			break
		}
	}

	env, err := s.client.Resource(api.KindModule).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, ErrModuleNotFound
	}
	payload, _ := env.Payload().(map[string]any)
	if m, ok := payload["module"].(map[string]any); ok {
		return moduleFrom(m)
	}
	if len(payload) > 0 {
		return moduleFrom(payload)
	}
	if top, ok := env.Body().(map[string]any); ok {
		if m, ok := top["module"].(map[string]any); ok {
			return moduleFrom(m)
		}
	}
	return nil, ErrModuleNotFound
}

func moduleFrom(m map[string]any) (*lms.Module, error) {
	var mod lms.Module
	if err := decode(m, &mod); err != nil {
		return nil, fmt.Errorf("invalid module: %w", err)
	}
	if mod.Name == "" {
		mod.Name = envelope.String(envelope.Field(m, "module_name", "title"))
	}
	if mod.Name == "" {
		mod.Name = "Module"
	}
	return &mod, nil
}

// sameID compares ids numerically when both are numbers.
func sameID(v any, id string) bool {
	if a, ok := envelope.Number(v); ok {
		if b, err := strconv.ParseFloat(id, 64); err == nil {
			return a == b
		}
	}
	return v != nil && envelope.String(v) == id
}

func decode(v any, dst any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// ModulePage is one page of a learner's modules.
type ModulePage struct {
	Items []lms.ModuleProgress `json:"items"`
	Meta  envelope.PageMeta    `json:"meta"`
}

// MyModules lists the modules userID is enrolled in. Rows without a name are
// completed from one module listing.
func (s *Service) MyModules(ctx context.Context, userID string, page int) (*ModulePage, error) {
	if userID == "" {
		return nil, session.ErrNoSession
	}
	if page < 1 {
		page = 1
	}
	env, err := s.list(ctx, api.KindUserModule, api.ListParams{
		Page:    page,
		PerPage: ModuleListPerPage,
		Filters: url.Values{"user_id": {userID}},
	})
	if err != nil {
		return nil, err
	}

	items := make([]lms.ModuleProgress, 0)
	missing := false
	for _, raw := range env.List() {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		p := progressFrom(row)
		if p.Name == "" && (p.ModuleID != "" || p.Code != "") {
			missing = true
		}
		items = append(items, p)
	}
	if missing {
		s.enrichNames(ctx, items)
	}

	out := &ModulePage{
		Items: items,
		Meta:  envelope.ExtractMetaWithDefaults(env.Body(), envelope.Defaults{PerPage: ModuleListPerPage, Page: page}),
	}
	if s.progress != nil {
		if err := s.progress.Save(userID, items); err != nil {
			s.logger.Warn("failed to cache progress", "user", userID, "error", err)
		}
	}
	return out, nil
}

func progressFrom(row map[string]any) lms.ModuleProgress {
	mod, _ := row["module"].(map[string]any)
	p := lms.ModuleProgress{
		ModuleID: envelope.String(firstNonNil(row["module_id"], mod["id"], row["id"])),
		Code:     envelope.String(firstNonNil(mod["code"], row["code"])),
		Name: envelope.String(firstNonNil(mod["name"], row["name"], row["module_name"],
			row["moduleName"], mod["title"], row["title"])),
	}
	if v, ok := envelope.Number(firstNonNil(row["progress"], mod["progress"])); ok {
		p.Progress = v
	}
	return p
}

func firstNonNil(vs ...any) any {
	for _, v := range vs {
		if v != nil {
			return v
		}
	}
	return nil
}

// enrichNames fills missing names, and codes where absent, from the module
// listing. Failures leave the rows as they are.
func (s *Service) enrichNames(ctx context.Context, items []lms.ModuleProgress) {
	env, err := s.list(ctx, api.KindModule, api.ListParams{Page: 1, PerPage: EnrichPerPage})
	if err != nil {
		s.logger.Debug("module name lookup failed", "error", err)
		return
	}
	type ref struct{ code, name string }
	byID := map[string]ref{}
	byCode := map[string]string{}
	for _, raw := range env.List() {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := envelope.String(firstNonNil(m["name"], m["title"]))
		code := envelope.String(m["code"])
		if id := envelope.String(firstNonNil(m["id"], m["module_id"])); id != "" {
			byID[id] = ref{code: code, name: name}
		}
		if code != "" {
			byCode[code] = name
		}
	}
	for i := range items {
		if items[i].Name != "" {
			continue
		}
		if r, ok := byID[items[i].ModuleID]; ok && r.name != "" {
			items[i].Name = r.name
			if items[i].Code == "" {
				items[i].Code = r.code
			}
		} else if name := byCode[items[i].Code]; name != "" {
			items[i].Name = name
		}
	}
}

// FilterTab keeps the rows of a progress tab: all, active or expired.
func FilterTab(items []lms.ModuleProgress, tab string) ([]lms.ModuleProgress, error) {
	f, err := lms.TabFilter(tab)
	if err != nil {
		return nil, err
	}
	out := make([]lms.ModuleProgress, 0, len(items))
	for _, it := range items {
		ok, err := f.Match(it)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, it)
		}
	}
	return out, nil
}

// Enroll enrolls userID in moduleID.
func (s *Service) Enroll(ctx context.Context, userID, moduleID string) error {
	fields := &lms.EnrollmentFields{UserID: lms.ID(userID), ModuleID: lms.ID(moduleID)}
	return s.save(ctx, api.KindUserModule, fields)
}

// SubmitAnswers stores a learner's quiz answers.
func (s *Service) SubmitAnswers(ctx context.Context, userID string, answers []lms.Answer) error {
	fields := &lms.AnswerFields{UserID: lms.ID(userID), Answers: answers}
	return s.save(ctx, api.KindQuizAnswer, fields)
}

func (s *Service) save(ctx context.Context, kind api.Kind, fields any) error {
	if err := lms.Validate(fields); err != nil {
		return err
	}
	form, err := api.SaveForm(fields)
	if err != nil {
		return err
	}
	env, err := s.client.Resource(kind).Mutate(ctx, form)
	if err != nil {
		return err
	}
	return env.Err()
}

// MyCertificates lists the certificates issued to userID.
func (s *Service) MyCertificates(ctx context.Context, userID string) ([]lms.Certificate, error) {
	return mine[lms.Certificate](ctx, s, api.KindCertificate, userID)
}

// MyAssignments lists the assignments given to userID.
func (s *Service) MyAssignments(ctx context.Context, userID string) ([]lms.Assignment, error) {
	return mine[lms.Assignment](ctx, s, api.KindAssignment, userID)
}

// mine lists a user-scoped kind and keeps only rows owned by userID, since
// the backend may ignore the user_id filter.
func mine[T any](ctx context.Context, s *Service, kind api.Kind, userID string) ([]T, error) {
	if userID == "" {
		return nil, session.ErrNoSession
	}
	env, err := s.list(ctx, kind, api.ListParams{
		Page:    1,
		PerPage: MinePerPage,
		Filters: url.Values{"user_id": {userID}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, raw := range env.List() {
		row, ok := raw.(map[string]any)
		if !ok || !sameID(row["user_id"], userID) {
			continue
		}
		var item T
		if err := decode(row, &item); err != nil {
			s.logger.Warn("skipping row", "kind", kind.Name, "error", err)
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// AssignmentDocumentURL resolves an assignment's document against the site
// root, which is the API base URL without its trailing /api.
func AssignmentDocumentURL(baseURL string, a lms.Assignment) string {
	raw := a.DocumentRef()
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	root := strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/api")
	if strings.HasPrefix(raw, "/") {
		return root + raw
	}
	return root + "/" + raw
}

// QuizResults fetches the current user's results for a module.
func (s *Service) QuizResults(ctx context.Context, moduleID string) (*lms.QuizResults, error) {
	env, err := s.client.QuizResults(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return ParseQuizResults(env.Payload()), nil
}

// ParseQuizResults reads the loosely shaped results payload.
func ParseQuizResults(payload any) *lms.QuizResults {
	res := &lms.QuizResults{Items: []lms.QuizResult{}}

	var list []any
	switch p := payload.(type) {
	case []any:
		list = p
	case map[string]any:
		if f, ok := envelope.Number(envelope.Field(p, "score", "total_score", "marks")); ok {
			res.Score = &f
		}
		if f, ok := envelope.Number(envelope.Field(p, "total", "total_questions", "total_marks")); ok {
			res.Total = &f
		}
		list = envelope.ExtractList(map[string]any{"returnData": p})
		for _, key := range []string{"results", "answers", "list", "data"} {
			if l, ok := p[key].([]any); ok {
				list = l
				break
			}
		}
	}

	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := lms.QuizResult{
			QuestionID:    envelope.String(envelope.Field(m, "question_id", "id")),
			Question:      envelope.String(envelope.Field(m, "question_text", "question", "text")),
			YourAnswer:    envelope.String(envelope.Field(m, "your_answer", "answer", "user_answer")),
			CorrectAnswer: envelope.String(m["correct_answer"]),
		}
		if item.Question == "" {
			item.Question = "Q" + strconv.Itoa(i+1)
		}
		if b, ok := m["is_correct"].(bool); ok {
			item.IsCorrect = &b
		} else if f, ok := envelope.Number(m["is_correct"]); ok {
			b := f != 0
			item.IsCorrect = &b
		}
		res.Items = append(res.Items, item)
	}
	return res
}

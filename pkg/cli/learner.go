package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/cli/internal/flags"
	"github.com/akiliapp/lms/pkg/cli/internal/output"
	"github.com/akiliapp/lms/pkg/cli/internal/parse"
	"github.com/akiliapp/lms/pkg/dashboard"
	"github.com/akiliapp/lms/pkg/envelope"
	"github.com/akiliapp/lms/pkg/lms"
	"github.com/akiliapp/lms/pkg/store"
)

// ModuleOutput is the JSON form of 'modules show'.
type ModuleOutput struct {
	Module   *lms.Module      `json:"module"`
	Initials string           `json:"initials"`
	Counts   dashboard.Counts `json:"counts"`
}

var moduleShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a module with its document, media and quiz counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		id := args[0]
		mod, err := deps.dash.FindModule(cmd.Context(), id)
		if err != nil {
			if errors.Is(err, dashboard.ErrModuleNotFound) || isNotFound(err) {
				return &notFoundError{kind: api.KindModule.Name, id: id}
			}
			return err
		}
		counts, err := deps.dash.ModuleCounts(cmd.Context(), mod.ID.String())
		if err != nil {
			return err
		}
		out := ModuleOutput{Module: mod, Initials: mod.Initials(), Counts: counts}
		return printResult(out, func() {
			w := output.Table()
			output.Row(w, "ID:", mod.ID.String())
			output.Row(w, "Code:", mod.Code)
			output.Row(w, "Name:", mod.Name)
			if mod.Description != "" {
				output.Row(w, "Description:", output.Truncate(mod.Description, 80))
			}
			output.Row(w, "Documents:", strconv.Itoa(counts.Documents))
			output.Row(w, "Media:", strconv.Itoa(counts.Media))
			output.Row(w, "Quizzes:", strconv.Itoa(counts.Quizzes))
			_ = w.Flush()
		})
	},
}

var (
	myTab  string
	myPage int
)

var myCmd = &cobra.Command{
	Use:   "my",
	Short: "Show your modules, certificates and assignments",
}

// MyModulesOutput is the JSON form of 'my modules'.
type MyModulesOutput struct {
	Tab        string               `json:"tab"`
	Items      []lms.ModuleProgress `json:"items"`
	Pagination store.Pagination     `json:"pagination"`
}

var myModulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules you are enrolled in with your progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}
		page, err := deps.dash.MyModules(cmd.Context(), s.ID, myPage)
		if err != nil {
			return err
		}
		items, err := dashboard.FilterTab(page.Items, myTab)
		if err != nil {
			return err
		}
		out := MyModulesOutput{Tab: myTab, Items: items, Pagination: store.PaginationOf(page.Meta)}
		return printList(out, func() {
			printProgress(items)
			say("%s", paginationSummary(out.Pagination))
		})
	},
}

func printProgress(items []lms.ModuleProgress) {
	if len(items) == 0 {
		say("No modules found.")
		return
	}
	w := output.Table()
	output.Header(w, []string{"module_id", "code", "name", "progress", "status"})
	for _, it := range items {
		status := "active"
		if it.Completed() {
			status = "completed"
		}
		output.Row(w, it.ModuleID, it.Code, output.Truncate(it.Name, 40),
			strconv.FormatFloat(it.Progress, 'f', -1, 64)+"%", status)
	}
	_ = w.Flush()
}

var myCertificatesCmd = &cobra.Command{
	Use:   "certificates",
	Short: "List the certificates issued to you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}
		certs, err := deps.dash.MyCertificates(cmd.Context(), s.ID)
		if err != nil {
			return err
		}
		return printList(certs, func() {
			if len(certs) == 0 {
				say("No certificates yet.")
				return
			}
			w := output.Table()
			output.Header(w, []string{"id", "created_at", "certificate"})
			for _, c := range certs {
				has := "no"
				if c.Certificate != "" {
					has = "yes"
				}
				output.Row(w, c.ID.String(), c.CreatedAt, has)
			}
			_ = w.Flush()
		})
	},
}

// AssignmentOutput adds the resolved document link to an assignment.
type AssignmentOutput struct {
	lms.Assignment
	Link string `json:"link,omitempty"`
}

var myAssignmentsCmd = &cobra.Command{
	Use:   "assignments",
	Short: "List the assignments given to you",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}
		list, err := deps.dash.MyAssignments(cmd.Context(), s.ID)
		if err != nil {
			return err
		}
		out := make([]AssignmentOutput, len(list))
		for i, a := range list {
			out[i] = AssignmentOutput{Assignment: a, Link: dashboard.AssignmentDocumentURL(deps.client.BaseURL(), a)}
		}
		return printList(out, func() {
			if len(out) == 0 {
				say("No assignments yet.")
				return
			}
			w := output.Table()
			output.Header(w, []string{"id", "module_id", "title", "link"})
			for _, a := range out {
				output.Row(w, a.ID.String(), a.ModuleID.String(), output.Truncate(a.Title, 40), a.Link)
			}
			_ = w.Flush()
		})
	},
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <module-id>",
	Short: "Enroll yourself in a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}
		if err := deps.dash.Enroll(cmd.Context(), s.ID, args[0]); err != nil {
			return err
		}
		return printResult(map[string]string{"module_id": args[0], "status": "enrolled"}, func() {
			say("Enrolled in module %s.", args[0])
		})
	},
}

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Answer a module quiz and review your results",
}

var quizAnswers flags.KeyValues

var quizAnswerCmd = &cobra.Command{
	Use:   "answer <module-id>",
	Short: "Submit quiz answers for a module",
	Example: `  lmsctl quiz answer 3 --answer 11=B --answer 12=A
  lmsctl quiz answer 3          # asks each question on a terminal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}
		moduleID := args[0]

		var answers []lms.Answer
		if len(quizAnswers) > 0 {
			answers, err = parseAnswers(quizAnswers)
			if err != nil {
				return err
			}
		} else {
			answers, err = askQuiz(cmd.Context(), moduleID)
			if err != nil {
				return err
			}
		}
		if len(answers) == 0 {
			return errors.New("please give at least one answer (--answer question_id=option)")
		}

		if err := deps.dash.SubmitAnswers(cmd.Context(), s.ID, answers); err != nil {
			return err
		}
		say("Answers submitted successfully.")

		res, err := deps.dash.QuizResults(cmd.Context(), moduleID)
		if err != nil {
			deps.logger.Debug("results not available yet", "module", moduleID, "error", err)
			return printResult(map[string]any{"submitted": len(answers)}, func() {})
		}
		return printResult(res, func() { printQuizResults(res) })
	},
}

// askQuiz presents each question of a module as a selection.
func askQuiz(ctx context.Context, moduleID string) ([]lms.Answer, error) {
	if !isTerminal() {
		return nil, errors.New("--answer is required when not running in a terminal")
	}
	env, err := deps.client.Resource(api.KindQuiz).List(ctx, api.ListParams{
		Page:    1,
		PerPage: 50,
		Filters: url.Values{"module_id": {moduleID}},
	})
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}

	var questions []lms.Quiz
	for _, raw := range env.List() {
		var q lms.Quiz
		if err := decodeRow(raw, &q); err == nil && len(q.Options) > 0 {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("module %s has no quiz questions", moduleID)
	}

	choices := make([]string, len(questions))
	groups := make([]*huh.Group, len(questions))
	for i, q := range questions {
		opts := make([]huh.Option[string], len(q.Options))
		for j, o := range q.Options {
			label := o.Value
			if label == "" {
				label = o.Option
			}
			opts[j] = huh.NewOption(o.Option+". "+label, o.Option)
		}
		groups[i] = huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("%d. %s", i+1, q.Question)).
				Options(opts...).
				Value(&choices[i]),
		)
	}
	if err := huh.NewForm(groups...).RunWithContext(ctx); err != nil {
		return nil, err
	}

	answers := make([]lms.Answer, 0, len(questions))
	for i, q := range questions {
		if choices[i] != "" {
			answers = append(answers, lms.Answer{QuestionID: q.ID, Answer: choices[i]})
		}
	}
	return answers, nil
}

func decodeRow(raw any, dst any) error {
	row, ok := raw.(map[string]any)
	if !ok {
		return errors.New("row is not an object")
	}
	_, err := lms.DecodeFields(func() any { return dst }, row)
	return err
}

// parseAnswers reads question_id=option pairs in order. A question answered
// twice keeps its last answer in its first position.
func parseAnswers(raw []string) ([]lms.Answer, error) {
	var answers []lms.Answer
	index := map[string]int{}
	for _, r := range raw {
		qid, value, ok := parse.KeyValue(r, '=')
		if !ok || qid == "" {
			return nil, fmt.Errorf("invalid answer %q (want question_id=option)", r)
		}
		if i, seen := index[qid]; seen {
			answers[i].Answer = value
			continue
		}
		index[qid] = len(answers)
		answers = append(answers, lms.Answer{QuestionID: lms.ID(qid), Answer: value})
	}
	return answers, nil
}

var quizResultsCmd = &cobra.Command{
	Use:   "results <module-id>",
	Short: "Show your quiz results for a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		res, err := deps.dash.QuizResults(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printResult(res, func() { printQuizResults(res) })
	},
}

func printQuizResults(res *lms.QuizResults) {
	if res.Score != nil && res.Total != nil {
		say("Score: %s / %s", envelope.String(*res.Score), envelope.String(*res.Total))
	} else if res.Score != nil {
		say("Score: %s", envelope.String(*res.Score))
	}
	if len(res.Items) == 0 {
		say("No answers recorded.")
		return
	}
	w := output.Table()
	output.Header(w, []string{"question", "your_answer", "correct_answer", "result"})
	for _, it := range res.Items {
		result := "-"
		if it.IsCorrect != nil {
			result = "wrong"
			if *it.IsCorrect {
				result = "correct"
			}
		}
		output.Row(w, output.Truncate(it.Question, 50), it.YourAnswer, it.CorrectAnswer, result)
	}
	_ = w.Flush()
}

var progressLocal bool

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your module progress",
	Long: `Show your module progress. With --local the last list fetched by
'lmsctl my modules' is read from disk instead of the server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireSession()
		if err != nil {
			return err
		}
		var items []lms.ModuleProgress
		if progressLocal {
			items, err = deps.progress.Load(s.ID)
			if err != nil {
				return err
			}
		} else {
			page, err := deps.dash.MyModules(cmd.Context(), s.ID, 1)
			if err != nil {
				return err
			}
			items = page.Items
		}
		if items == nil {
			items = []lms.ModuleProgress{}
		}
		done := 0
		for _, it := range items {
			if it.Completed() {
				done++
			}
		}
		return printList(items, func() {
			printProgress(items)
			say("%d of %d modules completed", done, len(items))
		})
	},
}

func init() {
	myModulesCmd.Flags().StringVar(&myTab, "tab", lms.TabAll, "Tab: "+strings.Join(lms.TabNames(), ", "))
	myModulesCmd.Flags().IntVar(&myPage, "page", 1, "Page to load (1-based)")
	myCmd.AddCommand(myModulesCmd, myCertificatesCmd, myAssignmentsCmd)

	quizAnswerCmd.Flags().Var(&quizAnswers, "answer", "Answer question_id=option (repeatable)")
	quizCmd.AddCommand(quizAnswerCmd, quizResultsCmd)

	progressCmd.Flags().BoolVar(&progressLocal, "local", false, "Read the cached progress instead of the server")

	rootCmd.AddCommand(myCmd, enrollCmd, quizCmd, progressCmd)
}

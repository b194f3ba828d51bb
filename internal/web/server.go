// Package web is the htmx front end. It is thin presentation over the app
// context: handlers translate form values into app operations and render
// partials; no scheduling or persistence rules live here.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/app"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/domain"
	"github.com/seyfullahozdaglar/SpacedRepetitionAppWithJson/internal/session"
)

//go:embed all:templates
var templateFiles embed.FS

// Server holds the dependencies for the HTTP server.
type Server struct {
	app       *app.App
	router    *http.ServeMux
	logger    *slog.Logger
	templates *template.Template
	batchSize int
}

// NewServer creates and configures a new server. batchSize is the default
// session size used when the form omits one.
func NewServer(a *app.App, batchSize int, logger *slog.Logger) (*Server, error) {
	tpl, err := template.New("").Funcs(template.FuncMap{
		"pct": func(f float64) float64 { return f * 100 },
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		app:       a,
		router:    http.NewServeMux(),
		logger:    logger,
		templates: tpl,
		batchSize: batchSize,
	}
	s.routes()
	return s, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleIndex)
	s.router.HandleFunc("GET /dashboard", s.handleDashboard)

	s.router.HandleFunc("GET /lists", s.handleLists)
	s.router.HandleFunc("POST /lists", s.handleCreateList)
	s.router.HandleFunc("POST /lists/{id}/select", s.handleSelectList)
	s.router.HandleFunc("DELETE /lists/{id}", s.handleDeleteList)

	s.router.HandleFunc("POST /session/learn", s.handleStartSession(false))
	s.router.HandleFunc("POST /session/practice", s.handleStartSession(true))
	s.router.HandleFunc("POST /session/answer", s.handleAnswer)
	s.router.HandleFunc("POST /session/known", s.handleMarkKnown)
	s.router.HandleFunc("POST /session/delete", s.handleDeleteCurrent)

	s.router.HandleFunc("GET /stats", s.handleStats)
	s.router.HandleFunc("POST /cards/{id}/toggle-known", s.handleToggleKnown)
	s.router.HandleFunc("DELETE /cards/{id}", s.handleDeleteCard)

	s.router.HandleFunc("GET /import", s.handleImportView)
	s.router.HandleFunc("POST /import/bulk", s.handleBulkImport)
	s.router.HandleFunc("POST /cards", s.handleAddCard)
	s.router.HandleFunc("GET /export.csv", s.handleExportCSV)
	s.router.HandleFunc("POST /import/csv", s.handleImportCSV)

	s.router.HandleFunc("POST /file/bind", s.handleBindFile)
	s.router.HandleFunc("POST /file/open", s.handleOpenFile)
	s.router.HandleFunc("POST /wipe", s.handleWipe)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render failed", "template", name, "error", err)
	}
}

func (s *Server) message(w http.ResponseWriter, kind, text string) {
	s.render(w, "message", map[string]string{"Kind": kind, "Text": text})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index", nil)
}

type dashboardData struct {
	List      *domain.List
	Total     int
	New       int
	Ready     int
	Known     int
	FileBound bool
	BatchSize int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts := s.app.Counts()
	s.render(w, "dashboard", dashboardData{
		List:      s.app.CurrentList(),
		Total:     counts.Total,
		New:       counts.NeverPracticed,
		Ready:     counts.Ready,
		Known:     counts.Known,
		FileBound: s.app.FileBound(),
		BatchSize: s.batchSize,
	})
}

type listRow struct {
	*domain.List
	Cards  int
	Active bool
}

func (s *Server) renderLists(w http.ResponseWriter) {
	current := s.app.CurrentList()
	var rows []listRow
	for _, l := range s.app.Lists() {
		rows = append(rows, listRow{
			List:   l,
			Cards:  s.app.CardCount(l.ID),
			Active: current != nil && l.ID == current.ID,
		})
	}
	s.render(w, "lists", rows)
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	s.renderLists(w)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	if _, err := s.app.CreateList(r.PostFormValue("name")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.renderLists(w)
}

func (s *Server) handleSelectList(w http.ResponseWriter, r *http.Request) {
	if err := s.app.SwitchList(r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.renderLists(w)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteList(r.PathValue("id")); err != nil && !errors.Is(err, app.ErrCancelled) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.renderLists(w)
}

func (s *Server) handleStartSession(practice bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch := s.batchSize
		if n, err := strconv.Atoi(r.PostFormValue("batchSize")); err == nil && n > 0 {
			batch = n
		}
		direction := session.WordToMeaning
		if r.PostFormValue("direction") == string(session.MeaningToWord) {
			direction = session.MeaningToWord
		}

		var err error
		if practice {
			err = s.app.StartPractice(batch, direction)
		} else {
			err = s.app.StartLearn(batch, direction)
		}
		if errors.Is(err, session.ErrNoCards) {
			if practice {
				s.message(w, "warning", "No cards are ready to practice right now. Wait until due time or until more cards fall below 70%.")
			} else {
				s.message(w, "warning", "No new words to learn!")
			}
			return
		}
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.renderQuestion(w)
	}
}

func (s *Server) renderQuestion(w http.ResponseWriter) {
	q, err := s.app.Question()
	if err != nil {
		s.renderSummary(w)
		return
	}
	s.render(w, "question", q)
}

type answerData struct {
	Result   session.Result
	Question *session.Question
	Summary  *app.Summary
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.SubmitAnswer(r.PostFormValue("option"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	data := answerData{Result: res}
	if q, err := s.app.Question(); err == nil {
		data.Question = &q
	} else {
		data.Summary = s.app.LastSummary()
	}
	s.render(w, "answer", data)
}

func (s *Server) handleMarkKnown(w http.ResponseWriter, r *http.Request) {
	if err := s.app.MarkCurrentKnown(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.renderQuestion(w)
}

func (s *Server) handleDeleteCurrent(w http.ResponseWriter, r *http.Request) {
	err := s.app.DeleteCurrentCard()
	if err != nil && !errors.Is(err, app.ErrCancelled) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.renderQuestion(w)
}

func (s *Server) renderSummary(w http.ResponseWriter) {
	sum := s.app.LastSummary()
	if sum == nil {
		s.message(w, "warning", "No session in progress.")
		return
	}
	s.render(w, "summary", sum)
}

type statsRow struct {
	*domain.Card
	LastAsked string
	NextDue   string
	Overdue   bool
}

type statsData struct {
	Filter app.Filter
	Sort   string
	Desc   bool
	Rows   []statsRow
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filter := app.Filter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = app.FilterAvailableNow
	}
	sortBy := r.URL.Query().Get("sort")
	desc := r.URL.Query().Get("desc") == "true"

	now := time.Now().UTC()
	var rows []statsRow
	for _, c := range s.app.Statistics(filter, sortBy, desc) {
		row := statsRow{Card: c, LastAsked: "Never", NextDue: "Not scheduled"}
		if c.LastAskedAt != nil {
			row.LastAsked = c.LastAskedAt.Local().Format("2006-01-02")
		}
		if c.NextDueAt != nil {
			row.NextDue = c.NextDueAt.Local().Format("2006-01-02 15:04")
			row.Overdue = c.NextDueAt.Before(now)
		}
		rows = append(rows, row)
	}
	s.render(w, "stats", statsData{Filter: filter, Sort: sortBy, Desc: desc, Rows: rows})
}

func (s *Server) handleToggleKnown(w http.ResponseWriter, r *http.Request) {
	if err := s.app.ToggleKnown(r.PathValue("id")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.handleStats(w, r)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	err := s.app.DeleteCard(r.PathValue("id"))
	if err != nil && !errors.Is(err, app.ErrCancelled) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.handleStats(w, r)
}

func (s *Server) handleImportView(w http.ResponseWriter, r *http.Request) {
	s.render(w, "import", nil)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	created, err := s.app.AddCard(r.PostFormValue("word"), r.PostFormValue("meaning"))
	if err != nil {
		s.message(w, "incorrect", "Please enter both word and meaning.")
		return
	}
	if created {
		s.message(w, "correct", "Card added successfully!")
	} else {
		s.message(w, "correct", "Card updated successfully!")
	}
}

func (s *Server) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	imported, updated := s.app.ImportBulk(r.PostFormValue("content"))
	s.message(w, "correct", fmt.Sprintf("Import completed! %d new cards imported, %d existing cards updated.", imported, updated))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.app.ExportCSV()
	if err != nil {
		s.logger.Error("csv export failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	name := fmt.Sprintf("vocabulary-flashcards-backup-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write(data)
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	f, _, err := r.FormFile("file")
	if err != nil {
		s.message(w, "incorrect", "Please select a file to import.")
		return
	}
	defer f.Close()

	if err := s.app.ImportCSV(f); err != nil && !errors.Is(err, app.ErrCancelled) {
		s.message(w, "incorrect", "Import failed: "+err.Error())
		return
	}
	s.message(w, "correct", "Metadata imported successfully!")
}

func (s *Server) handleBindFile(w http.ResponseWriter, r *http.Request) {
	path := r.PostFormValue("path")
	if path == "" {
		s.message(w, "incorrect", "A file path is required.")
		return
	}
	if err := s.app.BindFile(path); err != nil {
		s.message(w, "incorrect", "Could not bind file: "+err.Error())
		return
	}
	s.message(w, "correct", "File bound for auto-save. Your data will be written into that file.")
}

func (s *Server) handleOpenFile(w http.ResponseWriter, r *http.Request) {
	path := r.PostFormValue("path")
	if path == "" {
		s.message(w, "incorrect", "A file path is required.")
		return
	}
	err := s.app.OpenFromFile(path)
	if err != nil && !errors.Is(err, app.ErrCancelled) {
		s.message(w, "incorrect", "Could not load file: "+err.Error())
		return
	}
	s.message(w, "correct", "Data loaded from file.")
}

func (s *Server) handleWipe(w http.ResponseWriter, r *http.Request) {
	if err := s.app.WipeCards(); err != nil && !errors.Is(err, app.ErrCancelled) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.message(w, "correct", "All cards in the current list have been deleted.")
}

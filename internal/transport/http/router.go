package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"manomitra/internal/app"
)

// Container holds the dependencies of the router. Analyzer and Submissions are nil when
// their API key is not configured; the matching routes then report the configuration error.
type Container struct {
	Questionnaire *app.QuestionnaireService
	Analyzer      *app.Analyzer
	Submissions   *app.SubmissionService
	Content       *app.ContentService
	Status        StatusSource
	Gatherer      prometheus.Gatherer
	Logger        *zap.Logger
}

// NewRouter wires every endpoint onto a gorilla/mux router.
func NewRouter(c Container) http.Handler {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if c.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	questionnaire := NewQuestionnaireHandler(c.Questionnaire)
	analyze := NewAnalyzeHandler(c.Analyzer, logger)
	submissions := NewSubmissionHandler(c.Submissions, logger)
	content := NewContentHandler(c.Content)
	ws := NewWSHandler(c.Status, c.Submissions, logger)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/questionnaire", questionnaire.List).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/questionnaire/score", questionnaire.Score).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/questionnaire/{title}", questionnaire.Get).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/analyze", analyze.Analyze).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/submissions", submissions.Create).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/submissions/{id}", submissions.Get).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/milestones", content.Milestones).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/resources", content.Resources).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/resources/categories", content.Categories).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/activities", content.Activities).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/activities/categories", content.ActivityCategories).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/support", content.Support).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/functions/v1/analyze-input", submissions.AnalyzeInput).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/ws/submissions/{id}", ws.ServeWS).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

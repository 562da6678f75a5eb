package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"skillmatch/internal/catalog"
	"skillmatch/internal/extraction"
	"skillmatch/internal/llm"
	"skillmatch/internal/pipeline"
	"skillmatch/internal/storage"
	"skillmatch/internal/store"
	pkgerrors "skillmatch/pkg/errors"
	"skillmatch/pkg/logger"
	"skillmatch/pkg/types"
)

const maxUploadBytes = 32 << 20

type Server struct {
	port    int
	engine  *llm.Engine
	pipe    *pipeline.Pipeline
	catalog *catalog.Catalog
	recs    *store.Store
	persist *storage.Store
}

func NewServer(port int, engine *llm.Engine, pipe *pipeline.Pipeline, cat *catalog.Catalog, recs *store.Store, persist *storage.Store) *Server {
	return &Server{
		port:    port,
		engine:  engine,
		pipe:    pipe,
		catalog: cat,
		recs:    recs,
		persist: persist,
	}
}

func (s *Server) route(handler http.HandlerFunc, methods ...string) http.HandlerFunc {
	return Chain(handler, CORS, RequestID, Logger, Recover, MethodChecker(methods...))
}

func (s *Server) Start() error {
	http.HandleFunc("/api/cvs", s.route(s.handleCvs, http.MethodPost, http.MethodGet, http.MethodDelete))
	http.HandleFunc("/api/structure", s.route(s.handleStructure, http.MethodPost))
	http.HandleFunc("/api/analyze", s.route(s.handleAnalyze, http.MethodPost))
	http.HandleFunc("/api/analyze/batch", s.route(s.handleAnalyzeBatch, http.MethodPost))
	http.HandleFunc("/api/rules/parse", s.route(s.handleParseRules, http.MethodPost))
	http.HandleFunc("/api/chat", s.route(s.handleChat, http.MethodPost))
	http.HandleFunc("/api/catalog", s.route(s.handleCatalog, http.MethodGet))
	http.HandleFunc("/api/recommendations", s.route(s.handleRecommendations, http.MethodGet))
	http.HandleFunc("/api/timeline", s.route(s.handleTimeline, http.MethodGet))

	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("Starting API server", "port", s.port)
	return http.ListenAndServe(addr, nil)
}

// handleCvs uploads (POST), lists (GET) or removes (DELETE) session CVs.
// Uploaded files go through text extraction before joining the pipeline.
func (s *Server) handleCvs(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	switch r.Method {
	case http.MethodGet:
		RespondWithJSON(w, http.StatusOK, s.pipe.Cvs())

	case http.MethodDelete:
		name := r.URL.Query().Get("name")
		if name == "" {
			RespondWithError(w, pkgerrors.ErrBadRequest("No CV name provided").WithRequestID(requestID))
			return
		}
		s.pipe.Remove(name)
		RespondWithJSON(w, http.StatusOK, s.pipe.Cvs())

	case http.MethodPost:
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			RespondWithError(w, pkgerrors.ErrBadRequest("Failed to parse upload").WithRequestID(requestID))
			return
		}
		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			RespondWithError(w, pkgerrors.ErrBadRequest("No files provided").WithRequestID(requestID))
			return
		}

		for _, header := range files {
			f, err := header.Open()
			if err != nil {
				slog.Error("Failed to open upload", "file", header.Filename, "error", err)
				continue
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				slog.Error("Failed to read upload", "file", header.Filename, "error", err)
				continue
			}

			text, err := extraction.Extract(header.Filename, data)
			if err != nil {
				var unsupported *pkgerrors.UnsupportedFormatError
				if errors.As(err, &unsupported) {
					RespondWithError(w, pkgerrors.ErrBadRequest(err.Error()).WithRequestID(requestID))
					return
				}
				slog.Error("Extraction failed", "file", header.Filename, "error", err)
				continue
			}
			s.pipe.Add(header.Filename, text)
		}
		RespondWithJSON(w, http.StatusOK, s.pipe.Cvs())
	}
}

func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	s.pipe.StructureAll(r.Context())
	RespondWithJSON(w, http.StatusOK, s.pipe.Cvs())
}

type analyzeRequest struct {
	Rules    []string `json:"rules"`
	Language string   `json:"language"`
}

func (s *Server) decodeAnalyzeRequest(r *http.Request) analyzeRequest {
	req := analyzeRequest{Language: "en"}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		slog.Warn("Ignoring malformed analyze request body", "error", err)
	}
	if len(req.Rules) == 0 {
		req.Rules = s.persist.LoadRules(req.Language)
	}
	if req.Language == "" {
		req.Language = "en"
	}
	return req
}

// handleAnalyze runs the per-CV recommendation pass. Individual failures
// surface as error records inside the aggregate, so this always returns 200
// once the loop finishes.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req := s.decodeAnalyzeRequest(r)
	agg := s.pipe.RecommendAll(r.Context(), req.Rules, req.Language)
	RespondWithJSON(w, http.StatusOK, agg)
}

// handleAnalyzeBatch sends every selected CV in one completion request.
// Unlike the per-CV pass, a response that cannot be parsed fails the whole
// call.
func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())
	req := s.decodeAnalyzeRequest(r)

	var selected []types.RawCv
	for _, cv := range s.pipe.Cvs() {
		if cv.Selected {
			selected = append(selected, cv)
		}
	}
	if len(selected) == 0 {
		RespondWithError(w, pkgerrors.ErrBadRequest("No CVs selected").WithRequestID(requestID))
		return
	}

	agg, err := s.engine.AnalyzeCvs(r.Context(), selected, req.Rules, req.Language)
	if err != nil {
		var unparsable *pkgerrors.UnparsableResponseError
		if errors.As(err, &unparsable) {
			RespondWithError(w, pkgerrors.ErrUnparsable(err.Error()).WithRequestID(requestID))
			return
		}
		RespondWithError(w, pkgerrors.ErrUpstream(err.Error()).WithRequestID(requestID))
		return
	}
	RespondWithJSON(w, http.StatusOK, agg)
}

func (s *Server) handleParseRules(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, pkgerrors.ErrBadRequest("Invalid request body").WithRequestID(requestID))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		RespondWithError(w, pkgerrors.ErrBadRequest("No rules text provided").WithRequestID(requestID))
		return
	}

	rules, err := s.engine.ParseRules(r.Context(), req.Text)
	if err != nil {
		var unparsable *pkgerrors.UnparsableResponseError
		if errors.As(err, &unparsable) {
			RespondWithError(w, pkgerrors.ErrUnparsable(err.Error()).WithRequestID(requestID))
			return
		}
		RespondWithError(w, pkgerrors.ErrUpstream(err.Error()).WithRequestID(requestID))
		return
	}

	s.persist.SaveRules(rules)
	RespondWithJSON(w, http.StatusOK, map[string][]string{"rules": rules})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GetRequestID(r.Context())

	var req struct {
		Message  string `json:"message"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, pkgerrors.ErrBadRequest("Invalid request body").WithRequestID(requestID))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		RespondWithError(w, pkgerrors.ErrBadRequest("No message provided").WithRequestID(requestID))
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	var history []types.ChatMessage
	s.persist.Load(storage.ChatHistoryKey, &history)
	rules := s.persist.LoadRules(req.Language)
	last := s.recs.Aggregate()

	cvCount := 0
	for _, cv := range s.pipe.Cvs() {
		if cv.Selected {
			cvCount++
		}
	}

	reply, err := s.engine.Chat(r.Context(), req.Message, history, cvCount, rules, &last)
	if err != nil {
		RespondWithError(w, pkgerrors.ErrUpstream(err.Error()).WithRequestID(requestID))
		return
	}

	history = append(history,
		types.ChatMessage{Text: req.Message, IsUser: true},
		types.ChatMessage{Text: reply, IsUser: false},
	)
	s.persist.Save(storage.ChatHistoryKey, history)

	RespondWithJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if field := r.URL.Query().Get("field"); field != "" {
		RespondWithJSON(w, http.StatusOK, s.catalog.ByField(field))
		return
	}
	RespondWithJSON(w, http.StatusOK, s.catalog.Search(r.URL.Query().Get("q")))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.recs.Aggregate())
}

type candidateTimeline struct {
	CandidateName string  `json:"candidateName"`
	CvName        string  `json:"cvName"`
	TotalHours    float64 `json:"totalHours"`
}

// handleTimeline estimates study time per candidate by resolving each
// recommendation against the catalog. Recommendations that match nothing
// contribute zero hours.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	agg := s.recs.Aggregate()

	timeline := make([]candidateTimeline, 0, len(agg.Candidates))
	for _, candidate := range agg.Candidates {
		entry := candidateTimeline{
			CandidateName: candidate.CandidateName,
			CvName:        candidate.CvName,
		}
		for _, rec := range candidate.Recommendations {
			entry.TotalHours += s.catalog.EstimatedHours(rec)
		}
		timeline = append(timeline, entry)
	}
	RespondWithJSON(w, http.StatusOK, timeline)
}

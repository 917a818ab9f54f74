// Package server содержит HTTP API сервиса сокращения ссылок.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nestjam/tinyurl/internal/domain/service"
	"github.com/nestjam/tinyurl/internal/middleware"
)

const (
	contentTypeHeader              = "Content-Type"
	contentLengthHeader            = "Content-Length"
	textPlain                      = "text/plain"
	applicationJSON                = "application/json"
	applicationGZIP                = "application/x-gzip"
	failedToWriteResponseMessage   = "failed to write response"
	failedToStoreURLMessage        = "failed to store url"
	failedToParseRequestMessage    = "failed to parse request"
	failedToPrepareResponseMessage = "failed to prepare response"
	urlNotFoundMessage             = "not found"
	urlIsEmptyMessage              = "url is empty"
	urlIsInvalidMessage            = "url is invalid"
	noCodesMessage                 = "no short codes"
)

// Server предоставляет HTTP API для сокращения ссылок, перехода по сокращенной ссылке
// и управления сохраненными ссылками.
type Server struct {
	service        *service.ShortenerService
	router         chi.Router
	logger         *zap.Logger
	metricsHandler http.Handler
	baseURL        string
	trustedSubnet  string
}

// ShortenRequest представляет тело запроса и содержит исходный URL.
type ShortenRequest struct {
	URL string `json:"url"` // исходный URL
}

// ShortenResponse содержит сокращенный URL.
type ShortenResponse struct {
	Result string `json:"result"` // сокращенный URL
}

// TinyURLRequest содержит исходный URL.
type TinyURLRequest struct {
	LongURL string `json:"longUrl"` // исходный URL
}

// TinyURLResponse содержит сокращенный код.
type TinyURLResponse struct {
	ShortURL string `json:"shortUrl"` // сокращенный код
}

// URL содержит исходный и сокращенный URL.
type URL struct {
	ShortURL    string `json:"short_url"`    // сокращенный URL
	OriginalURL string `json:"original_url"` // исходный URL
}

// Option определяет опцию настройки сервера.
type Option func(*Server)

// New создает сервер. Конструктор принимает на вход сервис сокращения ссылок, базовый URL и набор опций.
func New(svc *service.ShortenerService, baseURL string, options ...Option) *Server {
	r := chi.NewRouter()
	s := &Server{
		service: svc,
		router:  r,
		baseURL: baseURL,
		logger:  zap.NewNop(),
	}

	for _, opt := range options {
		opt(s)
	}

	r.Use(middleware.ResponseLogger(s.logger))

	r.Get("/ping", s.ping)

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType(applicationJSON))
		r.Use(middleware.RequestDecoder, middleware.ResponseEncoder)

		r.Post("/api/shorten", s.shortenAPI)
		r.Post("/api/tinyurl/shorten", s.shortenTinyURL)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType(textPlain, applicationGZIP))
		r.Use(middleware.RequestDecoder, middleware.ResponseEncoder)

		r.Post("/", s.shorten)
		r.Get("/{key}", s.redirect)
		r.Get("/api/tinyurl/{key}", s.redirect)
	})

	r.Route("/api/internal", func(r chi.Router) {
		r.Use(middleware.TrustedSubnet(s.trustedSubnet))
		r.Use(middleware.ResponseEncoder)

		r.Get("/stats", s.getStats)
		r.Get("/urls", s.getURLs)
		r.With(chimiddleware.AllowContentType(applicationJSON)).Delete("/urls", s.deleteURLs)
	})

	return s
}

// ServeHTTP обрабатывает запрос.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	longURL, err := s.service.Expand(r.Context(), key)

	if err != nil {
		s.logger.Error("Failed to expand url", zap.String("code", key), zap.Error(err))
		internalError(w, "failed to expand url")
		return
	}
	if longURL == "" {
		notFound(w, urlNotFoundMessage)
		return
	}

	http.Redirect(w, r, longURL, http.StatusTemporaryRedirect)
}

func (s *Server) shorten(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	code, ok := s.shortenURL(w, r, string(body))
	if !ok {
		return
	}

	w.Header().Set(contentTypeHeader, textPlain)
	w.WriteHeader(http.StatusCreated)
	if _, err = w.Write([]byte(s.joinBaseURL(code))); err != nil {
		s.logger.Error(failedToWriteResponseMessage, zap.Error(err))
	}
}

func (s *Server) shortenAPI(w http.ResponseWriter, r *http.Request) {
	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, failedToParseRequestMessage)
		return
	}

	code, ok := s.shortenURL(w, r, req.URL)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusCreated, ShortenResponse{Result: s.joinBaseURL(code)})
}

func (s *Server) shortenTinyURL(w http.ResponseWriter, r *http.Request) {
	var req TinyURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, failedToParseRequestMessage)
		return
	}

	code, ok := s.shortenURL(w, r, req.LongURL)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusCreated, TinyURLResponse{ShortURL: code})
}

// shortenURL сокращает ссылку и при ошибке сам отправляет ответ клиенту.
func (s *Server) shortenURL(w http.ResponseWriter, r *http.Request, longURL string) (string, bool) {
	code, err := s.service.Shorten(r.Context(), longURL)

	switch {
	case errors.Is(err, service.ErrURLIsEmpty):
		badRequest(w, urlIsEmptyMessage)
		return "", false
	case errors.Is(err, service.ErrInvalidURL):
		badRequest(w, urlIsInvalidMessage)
		return "", false
	case err != nil:
		s.logger.Error(failedToStoreURLMessage, zap.String("url", longURL), zap.Error(err))
		internalError(w, failedToStoreURLMessage)
		return "", false
	}

	return code, true
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	status := http.StatusInternalServerError
	if s.service.IsAvailable(r.Context()) {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.logger.Error("Failed to get stats", zap.Error(err))
		internalError(w, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getURLs(w http.ResponseWriter, r *http.Request) {
	mappings, err := s.service.GetURLs(r.Context())
	if err != nil {
		s.logger.Error("Failed to get urls", zap.Error(err))
		internalError(w, "failed to get urls")
		return
	}

	if len(mappings) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]URL, len(mappings))
	for i, m := range mappings {
		resp[i] = URL{
			ShortURL:    s.joinBaseURL(m.ShortCode),
			OriginalURL: m.LongURL,
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteURLs(w http.ResponseWriter, r *http.Request) {
	var codes []string
	if err := json.NewDecoder(r.Body).Decode(&codes); err != nil {
		badRequest(w, failedToParseRequestMessage)
		return
	}

	if len(codes) == 0 {
		badRequest(w, noCodesMessage)
		return
	}

	if err := s.service.DeleteURLs(r.Context(), codes); err != nil {
		s.logger.Error("Failed to delete urls", zap.Strings("codes", codes), zap.Error(err))
		internalError(w, "failed to delete urls")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	content, err := json.Marshal(v)
	if err != nil {
		internalError(w, failedToPrepareResponseMessage)
		return
	}

	w.Header().Set(contentTypeHeader, applicationJSON)
	w.Header().Set(contentLengthHeader, strconv.Itoa(len(content)))
	w.WriteHeader(status)
	if _, err = w.Write(content); err != nil {
		s.logger.Error(failedToWriteResponseMessage, zap.Error(err))
	}
}

func (s *Server) joinBaseURL(code string) string {
	return s.baseURL + "/" + code
}

func badRequest(w http.ResponseWriter, err string) {
	http.Error(w, err, http.StatusBadRequest)
}

func notFound(w http.ResponseWriter, err string) {
	http.Error(w, err, http.StatusNotFound)
}

func internalError(w http.ResponseWriter, err string) {
	http.Error(w, err, http.StatusInternalServerError)
}

// WithLogger задает логер для сервера.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTrustedSubnet задает доверенную подсеть для внутренних маршрутов.
func WithTrustedSubnet(subnet string) Option {
	return func(s *Server) {
		s.trustedSubnet = subnet
	}
}

// WithMetricsHandler задает обработчик маршрута /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

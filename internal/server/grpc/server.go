// Package grpc содержит gRPC API сервиса сокращения ссылок.
package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nestjam/tinyurl/internal/domain/service"
)

const (
	urlIsEmptyMessage        = "url is empty"
	urlIsInvalidMessage      = "url is invalid"
	failedToStoreURLMessage  = "failed to store url"
	failedToExpandURLMessage = "failed to expand url"
	urlNotFoundMessage       = "not found"
)

// Server предоставляет возможность сокращать ссылку и получать исходную по сокращенному коду.
type Server struct {
	service *service.ShortenerService
	logger  *zap.Logger
	baseURL string
}

var _ ShortenerServer = (*Server)(nil)

// Option определяет опцию настройки сервера.
type Option func(*Server)

// WithLogger задает логер сервера.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New создает сервер. Конструктор принимает на вход сервис сокращения ссылок, базовый URL и набор опций.
func New(svc *service.ShortenerService, baseURL string, options ...Option) *Server {
	s := &Server{
		service: svc,
		baseURL: baseURL,
		logger:  zap.NewNop(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Ping проверяет доступность сервиса.
func (s *Server) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.service.IsAvailable(ctx)), nil
}

// Shorten возвращает сокращенную ссылку.
func (s *Server) Shorten(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	longURL := request.GetValue()
	code, err := s.service.Shorten(ctx, longURL)

	switch {
	case errors.Is(err, service.ErrURLIsEmpty):
		return nil, status.Error(codes.InvalidArgument, urlIsEmptyMessage)
	case errors.Is(err, service.ErrInvalidURL):
		return nil, status.Error(codes.InvalidArgument, urlIsInvalidMessage)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, status.FromContextError(err).Err()
	case err != nil:
		s.logger.Error(failedToStoreURLMessage, zap.String("url", longURL), zap.Error(err))
		return nil, status.Error(codes.Internal, failedToStoreURLMessage)
	}

	return wrapperspb.String(s.baseURL + "/" + code), nil
}

// Expand возвращает исходную ссылку по сокращенному коду.
func (s *Server) Expand(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	code := request.GetValue()
	longURL, err := s.service.Expand(ctx, code)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, status.FromContextError(err).Err()
	}
	if err != nil {
		s.logger.Error(failedToExpandURLMessage, zap.String("code", code), zap.Error(err))
		return nil, status.Error(codes.Internal, failedToExpandURLMessage)
	}
	if longURL == "" {
		return nil, status.Error(codes.NotFound, urlNotFoundMessage)
	}

	return wrapperspb.String(longURL), nil
}

package service

import (
	"context"
	"net/url"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nestjam/tinyurl/internal/cache"
	"github.com/nestjam/tinyurl/internal/coalesce"
	"github.com/nestjam/tinyurl/internal/domain"
	"github.com/nestjam/tinyurl/internal/metrics"
	"github.com/nestjam/tinyurl/internal/shortener"
)

// Ошибки, связанные с сокращением ссылки.
var (
	ErrURLIsEmpty = errors.New("url is empty")   // исходный URL пуст
	ErrInvalidURL = errors.New("url is invalid") // исходный URL не является абсолютным http(s) URL
)

const (
	DefaultCacheCapacity = 1000 // емкость кеша по умолчанию

	// Кеш общий для обоих пространств ключей, префиксы не дают им пересекаться.
	longURLKeyPrefix   = "l:"
	shortCodeKeyPrefix = "s:"

	maxInsertAttempts = 3
)

// Stats содержит количество сохраненных ссылок и статистику кеша.
type Stats struct {
	URLs  int         `json:"urls"`  // количество сокращенных ссылок в хранилище
	Cache cache.Stats `json:"cache"` // статистика кеша
}

// ShortenerService выполняет сокращение и получение исходной ссылки, удаление сокращенных ссылок.
// Повторные запросы обслуживаются из кеша, одновременные промахи по одному ключу
// объединяются в одно обращение к хранилищу.
type ShortenerService struct {
	store         domain.URLStore
	cache         *cache.LFU[domain.URLMapping]
	flights       coalesce.Group[domain.URLMapping]
	generator     *shortener.Generator
	metrics       *metrics.Metrics
	logger        *zap.Logger
	urlRemover    *URLRemover
	cacheCapacity int
	maxAttempts   int

	// epoch увеличивается при каждом удалении. Результат чтения из хранилища
	// попадает в кеш, только если между чтением и записью в кеш удалений не было.
	epochMu sync.Mutex
	epoch   uint64
}

// Option определяет опцию настройки сервиса.
type Option func(*ShortenerService)

// WithCacheCapacity задает количество записей, которые хранит кеш.
func WithCacheCapacity(capacity int) Option {
	return func(s *ShortenerService) {
		s.cacheCapacity = capacity
	}
}

// WithLogger задает логер сервиса.
func WithLogger(logger *zap.Logger) Option {
	return func(s *ShortenerService) {
		s.logger = logger
	}
}

// WithMetrics задает метрики сервиса.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ShortenerService) {
		s.metrics = m
	}
}

// WithMaxAttempts задает количество попыток подобрать свободный сокращенный код.
func WithMaxAttempts(attempts int) Option {
	return func(s *ShortenerService) {
		s.maxAttempts = attempts
	}
}

// New создает сервис сокращения ссылок.
func New(store domain.URLStore, options ...Option) *ShortenerService {
	s := &ShortenerService{
		store:         store,
		logger:        zap.NewNop(),
		cacheCapacity: DefaultCacheCapacity,
		maxAttempts:   shortener.DefaultMaxAttempts,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = metrics.NewNop()
	}

	s.cache = cache.New[domain.URLMapping](s.cacheCapacity)
	s.metrics.RegisterCacheSize(s.cache.Len)
	s.generator = shortener.NewGenerator(
		shortener.WithMaxAttempts(s.maxAttempts),
		shortener.WithCollisionHandler(s.onCollision),
	)

	return s
}

// SetURLRemover задает компонент, удаляющий ссылки.
func (s *ShortenerService) SetURLRemover(remover *URLRemover) {
	s.urlRemover = remover
}

// Shorten возвращает сокращенный код для исходной ссылки.
// Для уже сокращенной ссылки возвращается ранее выданный код.
func (s *ShortenerService) Shorten(ctx context.Context, longURL string) (string, error) {
	const op = "shorten url"

	if err := validateURL(longURL); err != nil {
		return "", err
	}

	key := longURLKeyPrefix + longURL
	if mapping, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.WithLabelValues(metrics.OpShorten).Inc()
		s.logger.Debug("Cache hit", zap.String("url", longURL))
		return mapping.ShortCode, nil
	}
	s.metrics.CacheMisses.WithLabelValues(metrics.OpShorten).Inc()

	mapping, shared, err := s.flights.Resolve(ctx, key, func(ctx context.Context) (domain.URLMapping, error) {
		return s.resolveLongURL(ctx, key, longURL)
	})
	if shared {
		s.metrics.Coalesced.WithLabelValues(metrics.OpShorten).Inc()
	}
	if err != nil {
		if isStoreError(err) {
			s.metrics.StoreErrors.WithLabelValues(metrics.OpShorten).Inc()
		}
		return "", errors.Wrap(err, op)
	}

	return mapping.ShortCode, nil
}

func (s *ShortenerService) resolveLongURL(ctx context.Context, key, longURL string) (domain.URLMapping, error) {
	const op = "resolve long url"

	epoch := s.currentEpoch()
	existing, err := s.store.FindByLongURL(ctx, longURL)
	if err == nil {
		s.logger.Info("Found existing mapping",
			zap.String("url", longURL),
			zap.String("code", existing.ShortCode))
		s.cachePut(epoch, key, existing)
		return existing, nil
	}
	if !errors.Is(err, domain.ErrMappingNotFound) {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	for attempt := 0; attempt < maxInsertAttempts; attempt++ {
		code, err := s.generator.Generate(ctx, longURL, s.shortCodeExists)
		if err != nil {
			return domain.URLMapping{}, errors.Wrap(err, op)
		}

		mapping := domain.URLMapping{
			ShortCode: code,
			LongURL:   longURL,
		}
		err = s.store.Insert(ctx, mapping)
		if errors.Is(err, domain.ErrShortCodeExists) {
			s.onCollision(code, attempt)
			continue
		}
		if err != nil {
			return domain.URLMapping{}, errors.Wrap(err, op)
		}

		s.cachePut(epoch, key, mapping)
		s.logger.Info("Stored new mapping",
			zap.String("url", longURL),
			zap.String("code", code))
		return mapping, nil
	}

	return domain.URLMapping{}, errors.Wrap(shortener.ErrGenerationExhausted, op)
}

func (s *ShortenerService) shortCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := s.store.FindByShortCode(ctx, code)
	if errors.Is(err, domain.ErrMappingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "check short code")
	}

	return true, nil
}

func (s *ShortenerService) onCollision(code string, attempt int) {
	s.metrics.Collisions.Inc()
	s.logger.Warn("Collision detected, regenerating",
		zap.String("code", code),
		zap.Int("attempt", attempt))
}

// Expand возвращает исходную ссылку по сокращенному коду.
// Если код неизвестен, возвращается пустая строка без ошибки.
func (s *ShortenerService) Expand(ctx context.Context, code string) (string, error) {
	const op = "expand url"

	if code == "" {
		return "", nil
	}

	key := shortCodeKeyPrefix + code
	if mapping, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.WithLabelValues(metrics.OpExpand).Inc()
		s.logger.Debug("Cache hit", zap.String("code", code))
		return mapping.LongURL, nil
	}
	s.metrics.CacheMisses.WithLabelValues(metrics.OpExpand).Inc()

	mapping, shared, err := s.flights.Resolve(ctx, key, func(ctx context.Context) (domain.URLMapping, error) {
		return s.resolveShortCode(ctx, key, code)
	})
	if shared {
		s.metrics.Coalesced.WithLabelValues(metrics.OpExpand).Inc()
	}
	if err != nil {
		if isStoreError(err) {
			s.metrics.StoreErrors.WithLabelValues(metrics.OpExpand).Inc()
		}
		return "", errors.Wrap(err, op)
	}

	return mapping.LongURL, nil
}

func (s *ShortenerService) resolveShortCode(ctx context.Context, key, code string) (domain.URLMapping, error) {
	const op = "resolve short code"

	epoch := s.currentEpoch()
	mapping, err := s.store.FindByShortCode(ctx, code)
	if errors.Is(err, domain.ErrMappingNotFound) {
		s.logger.Warn("No mapping found", zap.String("code", code))
		return domain.URLMapping{}, nil
	}
	if err != nil {
		return domain.URLMapping{}, errors.Wrap(err, op)
	}

	s.cachePut(epoch, key, mapping)
	return mapping, nil
}

func (s *ShortenerService) currentEpoch() uint64 {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()

	return s.epoch
}

// cachePut кеширует отображение, если после чтения с эпохой epoch ссылки не удалялись.
func (s *ShortenerService) cachePut(epoch uint64, key string, mapping domain.URLMapping) {
	s.epochMu.Lock()
	defer s.epochMu.Unlock()

	if s.epoch != epoch {
		s.logger.Debug("Skip caching after concurrent removal", zap.String("key", key))
		return
	}
	s.cache.Put(key, mapping)
}

// GetURLs возвращает все сокращенные ссылки.
func (s *ShortenerService) GetURLs(ctx context.Context) ([]domain.URLMapping, error) {
	const op = "get urls"

	mappings, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return mappings, nil
}

// DeleteURLs удаляет сокращенные ссылки. Если задан компонент удаления,
// ссылки удаляются асинхронно.
func (s *ShortenerService) DeleteURLs(ctx context.Context, codes []string) error {
	const op = "delete urls"

	var err error
	if s.urlRemover != nil {
		err = s.urlRemover.DeleteURLs(codes)
	} else {
		err = s.RemoveURLs(ctx, codes)
	}

	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// RemoveURLs удаляет сокращенные ссылки из хранилища и из кеша.
func (s *ShortenerService) RemoveURLs(ctx context.Context, codes []string) error {
	const op = "remove urls"

	longURLs := make([]string, 0, len(codes))
	for _, code := range codes {
		mapping, err := s.store.FindByShortCode(ctx, code)
		if errors.Is(err, domain.ErrMappingNotFound) {
			continue
		}
		if err != nil {
			s.metrics.StoreErrors.WithLabelValues(metrics.OpDelete).Inc()
			return errors.Wrap(err, op)
		}
		longURLs = append(longURLs, mapping.LongURL)
	}

	if err := s.store.Delete(ctx, codes); err != nil {
		s.metrics.StoreErrors.WithLabelValues(metrics.OpDelete).Inc()
		return errors.Wrap(err, op)
	}

	keys := make([]string, 0, len(codes)+len(longURLs))
	for _, code := range codes {
		keys = append(keys, shortCodeKeyPrefix+code)
	}
	for _, longURL := range longURLs {
		keys = append(keys, longURLKeyPrefix+longURL)
	}

	s.epochMu.Lock()
	s.epoch++
	for _, key := range keys {
		s.cache.Remove(key)
		s.flights.Forget(key)
	}
	s.epochMu.Unlock()

	s.logger.Info("Removed mappings", zap.Strings("codes", codes))
	return nil
}

// Stats возвращает количество сохраненных ссылок и статистику кеша.
func (s *ShortenerService) Stats(ctx context.Context) (Stats, error) {
	const op = "get stats"

	mappings, err := s.store.GetAll(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, op)
	}

	return Stats{
		URLs:  len(mappings),
		Cache: s.cache.Stats(),
	}, nil
}

// IsAvailable возвращает true, если сервис доступен.
func (s *ShortenerService) IsAvailable(ctx context.Context) bool {
	return s.store.IsAvailable(ctx)
}

// isStoreError возвращает false для отмены вызова и исчерпания попыток подбора кода.
func isStoreError(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded) &&
		!errors.Is(err, shortener.ErrGenerationExhausted)
}

func validateURL(rawURL string) error {
	if len(rawURL) == 0 {
		return ErrURLIsEmpty
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return errors.Wrap(ErrInvalidURL, err.Error())
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}

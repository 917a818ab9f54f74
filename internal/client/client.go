// Package client содержит HTTP клиент сервиса сокращения ссылок.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	defaultServerAddress = "http://localhost:8080"
	defaultTimeout       = 10 * time.Second
	apiShortenPath       = "/api/shorten"
	locationHeader       = "Location"
)

// ErrNotFound возвращается, если сокращенная ссылка неизвестна серверу.
var ErrNotFound = errors.New("not found")

// Client представляет клиент сервиса сокращения ссылок.
type Client struct {
	inner         *resty.Client
	serverAddress string
}

type shortenRequest struct {
	URL string `json:"url"`
}

type shortenResponse struct {
	Result string `json:"result"`
}

// Option определяет опцию настройки клиента.
type Option func(*Client)

// New создает экземпляр клиента с переданными опциями.
func New(options ...Option) *Client {
	client := &Client{
		inner:         resty.New().SetTimeout(defaultTimeout),
		serverAddress: defaultServerAddress,
	}

	client.inner.SetRedirectPolicy(
		resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}),
	)

	for _, opt := range options {
		opt(client)
	}

	return client
}

// WithServerAddress возвращает опцию клиента с указанным адресом сервера.
func WithServerAddress(addr string) Option {
	return func(client *Client) {
		client.serverAddress = strings.TrimSuffix(addr, "/")
	}
}

// WithTimeout задает время ожидания ответа сервера.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		client.inner.SetTimeout(timeout)
	}
}

// Expand возвращает исходную ссылку по сокращенной.
// Для неизвестной ссылки возвращается ErrNotFound.
func (c *Client) Expand(ctx context.Context, shortURL string) (string, error) {
	const op = "expand url"

	response, err := c.inner.R().
		SetContext(ctx).
		Get(shortURL)
	if err != nil {
		return "", errors.Wrap(err, op)
	}

	switch response.StatusCode() {
	case http.StatusTemporaryRedirect:
		return response.Header().Get(locationHeader), nil
	case http.StatusNotFound:
		return "", errors.Wrap(ErrNotFound, op)
	default:
		return "", errors.Wrap(statusError(response), op)
	}
}

// Shorten выполняет сокращение ссылки через JSON API.
// Возвращает сокращенную ссылку в случае успеха, иначе ошибку.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	const op = "shorten url"

	var result shortenResponse
	response, err := c.inner.R().
		SetContext(ctx).
		SetBody(shortenRequest{URL: longURL}).
		SetResult(&result).
		Post(c.serverAddress + apiShortenPath)
	if err != nil {
		return "", errors.Wrap(err, op)
	}

	if response.StatusCode() != http.StatusCreated {
		return "", errors.Wrap(statusError(response), op)
	}

	return result.Result, nil
}

func statusError(response *resty.Response) error {
	return errors.Errorf("unexpected status %d: %s",
		response.StatusCode(), strings.TrimSpace(response.String()))
}

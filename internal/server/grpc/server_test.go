package grpc

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/nestjam/tinyurl/internal/domain"
	"github.com/nestjam/tinyurl/internal/domain/service"
	"github.com/nestjam/tinyurl/internal/interceptor"
	"github.com/nestjam/tinyurl/internal/persistance/inmemory"
)

const (
	testURL = "https://practicum.yandex.ru/"
	baseURL = "http://localhost:8080"
)

var errStoreUnavailable = errors.New("store is unavailable")

func TestURLShortener(t *testing.T) {
	t.Run("with in memory store", func(t *testing.T) {
		URLShortenerTest{
			CreateDependencies: func() (domain.URLStore, Cleanup) {
				return inmemory.New(), func() {
				}
			},
		}.Test(t)
	})
}

type Cleanup func()

type URLShortenerTest struct {
	CreateDependencies func() (domain.URLStore, Cleanup)
}

func (u URLShortenerTest) Test(t *testing.T) {
	t.Run("pinging service", func(t *testing.T) {
		t.Run("service is avaiable", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := New(service.New(urlStore), baseURL)

			resp, err := sut.Ping(context.Background(), &emptypb.Empty{})

			require.NoError(t, err)
			assert.True(t, resp.GetValue())
		})

		t.Run("service is not avaiable", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			unavailableURLStore := domain.NewURLStoreDelegate(urlStore)
			unavailableURLStore.IsAvailableFunc = func(ctx context.Context) bool {
				return false
			}
			sut := New(service.New(unavailableURLStore), baseURL)

			resp, err := sut.Ping(context.Background(), &emptypb.Empty{})

			require.NoError(t, err)
			assert.False(t, resp.GetValue())
		})
	})

	t.Run("getting original url", func(t *testing.T) {
		t.Run("expand short code", func(t *testing.T) {
			const code = "EwHXdJ"
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			err := urlStore.Insert(context.Background(), domain.URLMapping{ShortCode: code, LongURL: testURL})
			require.NoError(t, err)
			sut := New(service.New(urlStore), baseURL)

			resp, err := sut.Expand(context.Background(), wrapperspb.String(code))

			require.NoError(t, err)
			assert.Equal(t, testURL, resp.GetValue())
		})

		t.Run("url not found", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := New(service.New(urlStore), baseURL)

			_, err := sut.Expand(context.Background(), wrapperspb.String("EwHXdJ"))

			assertCode(t, codes.NotFound, err)
		})

		t.Run("failed to expand url", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			failingURLStore := domain.NewURLStoreDelegate(urlStore)
			failingURLStore.FindByShortCodeFunc = func(ctx context.Context, code string) (domain.URLMapping, error) {
				return domain.URLMapping{}, errStoreUnavailable
			}
			sut := New(service.New(failingURLStore), baseURL)

			_, err := sut.Expand(context.Background(), wrapperspb.String("EwHXdJ"))

			assertCode(t, codes.Internal, err)
		})
	})

	t.Run("shortening url", func(t *testing.T) {
		t.Run("shorten url", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := New(service.New(urlStore), baseURL)

			resp, err := sut.Shorten(context.Background(), wrapperspb.String(testURL))

			require.NoError(t, err)
			require.True(t, strings.HasPrefix(resp.GetValue(), baseURL+"/"))
			code := strings.TrimPrefix(resp.GetValue(), baseURL+"/")
			got, err := urlStore.FindByShortCode(context.Background(), code)
			require.NoError(t, err)
			assert.Equal(t, testURL, got.LongURL)
		})

		t.Run("url is empty", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := New(service.New(urlStore), baseURL)

			_, err := sut.Shorten(context.Background(), wrapperspb.String(""))

			assertCode(t, codes.InvalidArgument, err)
		})

		t.Run("url is invalid", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			sut := New(service.New(urlStore), baseURL)

			_, err := sut.Shorten(context.Background(), wrapperspb.String("practicum.yandex.ru"))

			assertCode(t, codes.InvalidArgument, err)
		})

		t.Run("failed to store url", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			failingURLStore := domain.NewURLStoreDelegate(urlStore)
			failingURLStore.InsertFunc = func(ctx context.Context, mapping domain.URLMapping) error {
				return errStoreUnavailable
			}
			sut := New(service.New(failingURLStore), baseURL)

			_, err := sut.Shorten(context.Background(), wrapperspb.String(testURL))

			assertCode(t, codes.Internal, err)
		})

		t.Run("request is cancelled", func(t *testing.T) {
			urlStore, cleanup := u.CreateDependencies()
			t.Cleanup(cleanup)
			blockingURLStore := domain.NewURLStoreDelegate(urlStore)
			release := make(chan struct{})
			blockingURLStore.FindByLongURLFunc = func(ctx context.Context, longURL string) (domain.URLMapping, error) {
				<-release
				return urlStore.FindByLongURL(ctx, longURL)
			}
			sut := New(service.New(blockingURLStore), baseURL)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := sut.Shorten(ctx, wrapperspb.String(testURL))
			close(release)

			assertCode(t, codes.Canceled, err)
		})
	})
}

func TestShortenerClient(t *testing.T) {
	const bufSize = 1024 * 1024
	listener := bufconn.Listen(bufSize)
	s := grpc.NewServer(grpc.UnaryInterceptor(interceptor.Logger(zap.NewNop())))
	Register(s, New(service.New(inmemory.New()), baseURL))
	go func() {
		_ = s.Serve(listener)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
	})
	sut := NewShortenerClient(conn)
	ctx := context.Background()

	t.Run("ping", func(t *testing.T) {
		ok, err := sut.Ping(ctx)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("shorten and expand", func(t *testing.T) {
		shortURL, err := sut.Shorten(ctx, testURL)
		require.NoError(t, err)

		got, err := sut.Expand(ctx, strings.TrimPrefix(shortURL, baseURL+"/"))

		require.NoError(t, err)
		assert.Equal(t, testURL, got)
	})

	t.Run("expand unknown code", func(t *testing.T) {
		_, err := sut.Expand(ctx, "EwHXdJ")

		assertCode(t, codes.NotFound, err)
	})
}

func assertCode(t *testing.T, want codes.Code, err error) {
	t.Helper()

	require.Error(t, err)
	s, ok := status.FromError(err)
	require.True(t, ok, "error is not a grpc status: %v", err)
	assert.Equal(t, want, s.Code())
}

package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName является полным именем gRPC сервиса.
const ServiceName = "tinyurl.Shortener"

const (
	shortenMethod = "/" + ServiceName + "/Shorten"
	expandMethod  = "/" + ServiceName + "/Expand"
	pingMethod    = "/" + ServiceName + "/Ping"
)

// ShortenerServer описывает методы gRPC сервиса. Сообщения сервиса являются
// стандартными типами-обертками protobuf, поэтому генерация кода не требуется.
type ShortenerServer interface {
	Shorten(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Expand(ctx context.Context, request *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Ping(ctx context.Context, request *emptypb.Empty) (*wrapperspb.BoolValue, error)
}

// ServiceDesc описывает gRPC сервис сокращения ссылок.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShortenerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Shorten", Handler: shortenHandler},
		{MethodName: "Expand", Handler: expandHandler},
		{MethodName: "Ping", Handler: pingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tinyurl.proto",
}

// Register регистрирует реализацию сервиса на gRPC сервере.
func Register(s grpc.ServiceRegistrar, srv ShortenerServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func shortenHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	s, _ := srv.(ShortenerServer)
	if interceptor == nil {
		return s.Shorten(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: shortenMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		r, _ := req.(*wrapperspb.StringValue)
		return s.Shorten(ctx, r)
	})
}

func expandHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}

	s, _ := srv.(ShortenerServer)
	if interceptor == nil {
		return s.Expand(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: expandMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		r, _ := req.(*wrapperspb.StringValue)
		return s.Expand(ctx, r)
	})
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	s, _ := srv.(ShortenerServer)
	if interceptor == nil {
		return s.Ping(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: pingMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		r, _ := req.(*emptypb.Empty)
		return s.Ping(ctx, r)
	})
}

// ShortenerClient является клиентом gRPC сервиса сокращения ссылок.
type ShortenerClient struct {
	cc grpc.ClientConnInterface
}

func NewShortenerClient(cc grpc.ClientConnInterface) *ShortenerClient {
	return &ShortenerClient{cc: cc}
}

// Shorten возвращает сокращенную ссылку.
func (c *ShortenerClient) Shorten(ctx context.Context, longURL string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, shortenMethod, wrapperspb.String(longURL), out, opts...); err != nil {
		return "", err
	}

	return out.GetValue(), nil
}

// Expand возвращает исходную ссылку по сокращенному коду.
func (c *ShortenerClient) Expand(ctx context.Context, code string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, expandMethod, wrapperspb.String(code), out, opts...); err != nil {
		return "", err
	}

	return out.GetValue(), nil
}

// Ping проверяет доступность сервиса.
func (c *ShortenerClient) Ping(ctx context.Context, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, pingMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return false, err
	}

	return out.GetValue(), nil
}

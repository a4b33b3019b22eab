package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "identitykeeper.SessionService"

// Full method names, as seen by interceptors.
const (
	FullMethodRegister       = "/" + ServiceName + "/Register"
	FullMethodLogin          = "/" + ServiceName + "/Login"
	FullMethodLogout         = "/" + ServiceName + "/Logout"
	FullMethodChangePassword = "/" + ServiceName + "/ChangePassword"
	FullMethodGetProfile     = "/" + ServiceName + "/GetProfile"
	FullMethodUpdateProfile  = "/" + ServiceName + "/UpdateProfile"
	FullMethodPing           = "/" + ServiceName + "/Ping"
)

// SessionServiceServer is implemented by the RPC server.
type SessionServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Logout(context.Context, *LogoutRequest) (*LogoutResponse, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*ChangePasswordResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// RegisterSessionServiceServer registers srv on s.
func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(SessionServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SessionServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SessionServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the session service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", SessionServiceServer.Register),
		unary("Login", SessionServiceServer.Login),
		unary("Logout", SessionServiceServer.Logout),
		unary("ChangePassword", SessionServiceServer.ChangePassword),
		unary("GetProfile", SessionServiceServer.GetProfile),
		unary("UpdateProfile", SessionServiceServer.UpdateProfile),
		unary("Ping", SessionServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identitykeeper/session",
}

// SessionServiceClient calls the session service over a client connection.
type SessionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSessionServiceClient(cc grpc.ClientConnInterface) *SessionServiceClient {
	return &SessionServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SessionServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, FullMethodRegister, in, opts)
}

func (c *SessionServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, FullMethodLogin, in, opts)
}

func (c *SessionServiceClient) Logout(ctx context.Context, in *LogoutRequest, opts ...grpc.CallOption) (*LogoutResponse, error) {
	return invoke[LogoutResponse](ctx, c.cc, FullMethodLogout, in, opts)
}

func (c *SessionServiceClient) ChangePassword(ctx context.Context, in *ChangePasswordRequest, opts ...grpc.CallOption) (*ChangePasswordResponse, error) {
	return invoke[ChangePasswordResponse](ctx, c.cc, FullMethodChangePassword, in, opts)
}

func (c *SessionServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, FullMethodGetProfile, in, opts)
}

func (c *SessionServiceClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, FullMethodUpdateProfile, in, opts)
}

func (c *SessionServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, FullMethodPing, in, opts)
}

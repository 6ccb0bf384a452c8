package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/thrivebrands/beaconiq/internal/application"
)

const serviceName = "beaconiq.board.v1.BoardInternalService"

// BoardInternalService exposes the campaign board and token validation to
// other internal services.
type BoardInternalService interface {
	GetBoard(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type BoardInternalServer struct {
	service *application.Service
}

func NewBoardInternalServer(service *application.Service) *BoardInternalServer {
	return &BoardInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc BoardInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*BoardInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetBoard",
				Handler:    unaryHandler("GetBoard", func() *emptypb.Empty { return &emptypb.Empty{} }, svc.GetBoard),
			},
			{
				MethodName: "ValidateToken",
				Handler:    unaryHandler("ValidateToken", func() *structpb.Struct { return &structpb.Struct{} }, svc.ValidateToken),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "beaconiq/board/v1/board_internal.proto",
	}, svc)
}

func (s *BoardInternalServer) GetBoard(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	board, err := s.service.GetBoard(ctx)
	if err != nil {
		return nil, status.Errorf(codes.Unavailable, "load board: %v", err)
	}
	raw, err := json.Marshal(board)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode board: %v", err)
	}
	resp := &structpb.Struct{}
	if err := resp.UnmarshalJSON(raw); err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *BoardInternalServer) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := req.GetFields()["token"].GetStringValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}
	claims, err := s.service.ValidateToken(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	resp, err := structpb.NewStruct(map[string]any{
		"valid":      true,
		"user_id":    claims.UserID,
		"email":      claims.Email,
		"role":       claims.Role,
		"department": claims.Department,
		"expires_at": claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func unaryHandler[Req any, Resp any](
	method string,
	newReq func() Req,
	call func(context.Context, Req) (Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := newReq()
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(Req)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

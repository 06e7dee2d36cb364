package grpc_control

import (
	"context"
	"encoding/json"
	"errors"

	"synapse-console/src/helpers"
	"synapse-console/src/interfaces"
	"synapse-console/src/logger"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements ConsoleControlServer on top of the console controller
type ControlService struct {
	Controller interfaces.IConsoleController
	Logger     *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(ctrl interfaces.IConsoleController, log *logger.Logger) *ControlService {
	return &ControlService{
		Controller: ctrl,
		Logger:     log.Named("ControlService"),
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetSnapshot(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.Controller.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *ControlService) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username := req.GetFields()["username"].GetStringValue()
	password := req.GetFields()["password"].GetStringValue()
	if username == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}

	if err := s.Controller.Login(ctx, username, password); err != nil {
		return nil, toStatus(err)
	}

	s.Logger.Info("gRPC: login for %s succeeded", username)
	return structpb.NewStruct(map[string]interface{}{"authenticated": true})
}

// -----------------------------------------------------------------------------

func (s *ControlService) Logout(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error) {
	s.Controller.Logout()
	return &emptypb.Empty{}, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Reconnect(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.Controller.Reconnect(ctx); err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{"stream": s.Controller.Snapshot().StreamState})
}

// -----------------------------------------------------------------------------

func (s *ControlService) SelectModel(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "model id is required")
	}
	if err := s.Controller.SelectModel(req.GetValue()); err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return toStruct(s.Controller.Snapshot().ActiveModel)
}

// -----------------------------------------------------------------------------

// toStruct converts any JSON-taggable value into a protobuf Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func toStatus(err error) error {
	var (
		authErr    *helpers.AuthenticationError
		expiredErr *helpers.AuthorizationExpiredError
		netErr     *helpers.NetworkError
		userErr    interface{ UserMessage() string }
	)
	message := err.Error()
	if errors.As(err, &userErr) {
		message = userErr.UserMessage()
	}

	switch {
	case errors.As(err, &authErr), errors.As(err, &expiredErr):
		return status.Error(codes.Unauthenticated, message)
	case errors.As(err, &netErr):
		return status.Error(codes.Unavailable, message)
	default:
		return status.Error(codes.Internal, message)
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/docextract/internal/common"
	"github.com/joseph-ayodele/docextract/internal/extract"
)

const (
	ExtractionServiceName = "docextract.v1.ExtractionService"
	extractMethod         = "/" + ExtractionServiceName + "/Extract"

	// Metadata keys carrying the upload's name and OCR language.
	MetadataFilename = "x-filename"
	MetadataLang     = "x-lang"
)

// ExtractionServer is the server API for the extraction service. The
// request is the raw file; the response is the result JSON as a Struct.
type ExtractionServer interface {
	Extract(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
}

func RegisterExtractionServer(s grpc.ServiceRegistrar, srv ExtractionServer) {
	s.RegisterService(&extractionServiceDesc, srv)
}

var extractionServiceDesc = grpc.ServiceDesc{
	ServiceName: ExtractionServiceName,
	HandlerType: (*ExtractionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Extract", Handler: extractHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docextract/v1/extraction.proto",
}

func extractHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExtractionServer).Extract(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: extractMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExtractionServer).Extract(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// ExtractionClient calls a remote extraction service.
type ExtractionClient struct {
	cc grpc.ClientConnInterface
}

func NewExtractionClient(cc grpc.ClientConnInterface) *ExtractionClient {
	return &ExtractionClient{cc: cc}
}

// Extract uploads data under filename and decodes the result.
func (c *ExtractionClient) Extract(ctx context.Context, filename, lang string, data []byte, opts ...grpc.CallOption) (extract.Result, error) {
	md := metadata.Pairs(MetadataFilename, filename)
	if lang != "" {
		md.Set(MetadataLang, lang)
	}
	ctx = metadata.NewOutgoingContext(ctx, md)

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, extractMethod, wrapperspb.Bytes(data), out, opts...); err != nil {
		return extract.Result{}, err
	}
	return structToResult(out)
}

// ExtractionService adapts Service to ExtractionServer.
type ExtractionService struct {
	svc    *Service
	logger *slog.Logger
}

func NewExtractionService(svc *Service, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{svc: svc, logger: logger}
}

func (s *ExtractionService) Extract(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	filename := firstValue(md, MetadataFilename)
	if filename == "" {
		return nil, common.InvalidArgumentErrorf("%s metadata is required", MetadataFilename)
	}

	res, err := s.svc.Extract(ctx, filename, firstValue(md, MetadataLang), bytes.NewReader(in.GetValue()))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	out, err := resultToStruct(res)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("encode result failed", "error", err)
		return nil, common.InternalError("encode result failed")
	}
	return out, nil
}

func firstValue(md metadata.MD, key string) string {
	if vs := md.Get(key); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func resultToStruct(res extract.Result) (*structpb.Struct, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func structToResult(s *structpb.Struct) (extract.Result, error) {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return extract.Result{}, fmt.Errorf("decode result: %w", err)
	}
	var res extract.Result
	if err := json.Unmarshal(b, &res); err != nil {
		return extract.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return res, nil
}

// NewGRPCServer builds a gRPC server exposing the extraction service, the
// standard health service and reflection.
func NewGRPCServer(svc *Service, cfg *common.Config, logger *slog.Logger) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(unaryInterceptor(logger))}
	if n := cfg.Limits.MaxUploadBytes; n > 0 {
		// the message is the raw file plus a few bytes of framing
		opts = append(opts, grpc.MaxRecvMsgSize(int(n)+1024))
	}
	srv := grpc.NewServer(opts...)

	RegisterExtractionServer(srv, NewExtractionService(svc, logger))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ExtractionServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(srv)
	return srv
}

// unaryInterceptor assigns a request id, logs each call and turns panics
// into codes.Internal.
func unaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			id = firstValue(md, "x-request-id")
		}
		if id == "" || len(id) > 128 {
			id = common.NewRequestID()
		}
		reqLogger := logger.With("request_id", id)
		ctx = common.WithLogger(common.WithRequestID(ctx, id), reqLogger)
		_ = grpc.SetHeader(ctx, metadata.Pairs("x-request-id", id))

		start := time.Now()
		defer func() {
			if p := recover(); p != nil {
				reqLogger.Error("panic recovered", "method", info.FullMethod, "panic", p, "stack", string(debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			reqLogger.Info("grpc request",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		}()
		return handler(ctx, req)
	}
}

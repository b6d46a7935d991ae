package grpc

// service.go hand-writes the service descriptor for css.scoring.v1.
// Messages are plain Go structs carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "css.scoring.v1.CreditScoringService"

// Full method names, used for per-method role checks.
const (
	MethodSubmitApplication    = "/" + serviceName + "/SubmitApplication"
	MethodCalculateScore       = "/" + serviceName + "/CalculateScore"
	MethodBulkCalculate        = "/" + serviceName + "/BulkCalculate"
	MethodGetScore             = "/" + serviceName + "/GetScore"
	MethodDashboardStats       = "/" + serviceName + "/DashboardStats"
	MethodGetPolicy            = "/" + serviceName + "/GetPolicy"
	MethodUpdateWeights        = "/" + serviceName + "/UpdateWeights"
	MethodUpdateThresholds     = "/" + serviceName + "/UpdateThresholds"
	MethodQuestions            = "/" + serviceName + "/Questions"
	MethodValidatePsychometric = "/" + serviceName + "/ValidatePsychometric"
)

// CreditScoringServiceServer is the server API for CreditScoringService.
type CreditScoringServiceServer interface {
	SubmitApplication(context.Context, *SubmitApplicationRequest) (*SubmitApplicationResponse, error)
	CalculateScore(context.Context, *CalculateScoreRequest) (*ScoreResponse, error)
	BulkCalculate(context.Context, *BulkCalculateRequest) (*BulkCalculateResponse, error)
	GetScore(context.Context, *GetScoreRequest) (*ScoreResponse, error)
	DashboardStats(context.Context, *DashboardStatsRequest) (*DashboardStatsResponse, error)
	GetPolicy(context.Context, *GetPolicyRequest) (*PolicyResponse, error)
	UpdateWeights(context.Context, *UpdateWeightsRequest) (*PolicyResponse, error)
	UpdateThresholds(context.Context, *UpdateThresholdsRequest) (*PolicyResponse, error)
	Questions(context.Context, *QuestionsRequest) (*QuestionsResponse, error)
	ValidatePsychometric(context.Context, *ValidatePsychometricRequest) (*ValidatePsychometricResponse, error)
	mustEmbedUnimplementedCreditScoringServiceServer()
}

// UnimplementedCreditScoringServiceServer provides forward-compatible default implementations.
type UnimplementedCreditScoringServiceServer struct{}

func (UnimplementedCreditScoringServiceServer) SubmitApplication(context.Context, *SubmitApplicationRequest) (*SubmitApplicationResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitApplication not implemented")
}
func (UnimplementedCreditScoringServiceServer) CalculateScore(context.Context, *CalculateScoreRequest) (*ScoreResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CalculateScore not implemented")
}
func (UnimplementedCreditScoringServiceServer) BulkCalculate(context.Context, *BulkCalculateRequest) (*BulkCalculateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BulkCalculate not implemented")
}
func (UnimplementedCreditScoringServiceServer) GetScore(context.Context, *GetScoreRequest) (*ScoreResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetScore not implemented")
}
func (UnimplementedCreditScoringServiceServer) DashboardStats(context.Context, *DashboardStatsRequest) (*DashboardStatsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DashboardStats not implemented")
}
func (UnimplementedCreditScoringServiceServer) GetPolicy(context.Context, *GetPolicyRequest) (*PolicyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPolicy not implemented")
}
func (UnimplementedCreditScoringServiceServer) UpdateWeights(context.Context, *UpdateWeightsRequest) (*PolicyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateWeights not implemented")
}
func (UnimplementedCreditScoringServiceServer) UpdateThresholds(context.Context, *UpdateThresholdsRequest) (*PolicyResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateThresholds not implemented")
}
func (UnimplementedCreditScoringServiceServer) Questions(context.Context, *QuestionsRequest) (*QuestionsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Questions not implemented")
}
func (UnimplementedCreditScoringServiceServer) ValidatePsychometric(context.Context, *ValidatePsychometricRequest) (*ValidatePsychometricResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidatePsychometric not implemented")
}
func (UnimplementedCreditScoringServiceServer) mustEmbedUnimplementedCreditScoringServiceServer() {}

// RegisterCreditScoringServiceServer registers the server with the gRPC server.
func RegisterCreditScoringServiceServer(s grpclib.ServiceRegistrar, srv CreditScoringServiceServer) {
	s.RegisterService(&creditScoringServiceDesc, srv)
}

var creditScoringServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CreditScoringServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "SubmitApplication", Handler: unary(MethodSubmitApplication, CreditScoringServiceServer.SubmitApplication)},
		{MethodName: "CalculateScore", Handler: unary(MethodCalculateScore, CreditScoringServiceServer.CalculateScore)},
		{MethodName: "BulkCalculate", Handler: unary(MethodBulkCalculate, CreditScoringServiceServer.BulkCalculate)},
		{MethodName: "GetScore", Handler: unary(MethodGetScore, CreditScoringServiceServer.GetScore)},
		{MethodName: "DashboardStats", Handler: unary(MethodDashboardStats, CreditScoringServiceServer.DashboardStats)},
		{MethodName: "GetPolicy", Handler: unary(MethodGetPolicy, CreditScoringServiceServer.GetPolicy)},
		{MethodName: "UpdateWeights", Handler: unary(MethodUpdateWeights, CreditScoringServiceServer.UpdateWeights)},
		{MethodName: "UpdateThresholds", Handler: unary(MethodUpdateThresholds, CreditScoringServiceServer.UpdateThresholds)},
		{MethodName: "Questions", Handler: unary(MethodQuestions, CreditScoringServiceServer.Questions)},
		{MethodName: "ValidatePsychometric", Handler: unary(MethodValidatePsychometric, CreditScoringServiceServer.ValidatePsychometric)},
	},
	Streams: []grpclib.StreamDesc{},
}

// unaryHandler has the shape grpc expects in MethodDesc.Handler.
type unaryHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error)

// unary adapts a typed server method to a method handler that runs the
// server's interceptor chain.
func unary[Req, Resp any](
	fullMethod string,
	call func(CreditScoringServiceServer, context.Context, *Req) (*Resp, error),
) unaryHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, r any) (any, error) {
			return call(srv.(CreditScoringServiceServer), ctx, r.(*Req))
		}
		if interceptor == nil {
			return handler(ctx, req)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, req, info, handler)
	}
}

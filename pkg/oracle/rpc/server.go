// Package rpc exposes the oracle over gRPC. Messages are the same JSON documents served
// by the HTTP endpoints, carried with a JSON codec instead of protobuf.
package rpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/oracle"
)

const (
	serviceName = "oracle.v1.Oracle"
	// SignMethod is the full method name of Sign
	SignMethod = "/" + serviceName + "/Sign"
	// QueryMethod is the full method name of Query
	QueryMethod = "/" + serviceName + "/Query"
)

type oracleServer interface {
	sign(ctx context.Context, view *ledger.FilteredView) (*oracle.SignResponse, error)
	query(ctx context.Context, req *oracle.QueryRequest) (*oracle.QueryResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*oracleServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Sign", Handler: signHandler},
		{MethodName: "Query", Handler: queryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "oracle/v1/oracle",
}

// Server adapts an oracle.Service to gRPC
type Server struct {
	svc oracle.Service
}

// Register registers the oracle service on s
func Register(s grpc.ServiceRegistrar, svc oracle.Service) {
	s.RegisterService(&serviceDesc, &Server{svc: svc})
}

func (s *Server) sign(ctx context.Context, view *ledger.FilteredView) (*oracle.SignResponse, error) {
	sig, err := s.svc.Sign(ctx, view)
	if err != nil {
		return nil, toStatus(err)
	}
	return &oracle.SignResponse{Signature: *sig}, nil
}

func (s *Server) query(ctx context.Context, req *oracle.QueryRequest) (*oracle.QueryResponse, error) {
	fact, err := s.svc.Query(ctx, req.Draft)
	if err != nil {
		return nil, toStatus(err)
	}
	return &oracle.QueryResponse{Fact: *fact}, nil
}

func signHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ledger.FilteredView)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(oracleServer).sign(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SignMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(oracleServer).sign(ctx, req.(*ledger.FilteredView))
	}
	return interceptor(ctx, in, info, handler)
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(oracle.QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(oracleServer).query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: QueryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(oracleServer).query(ctx, req.(*oracle.QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// toStatus maps a service error to a gRPC status carrying only the public message
func toStatus(err error) error {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return status.Error(svcErr.GRPCCode(), svcErr.Message)
	}
	return status.Error(apperrors.ServiceError{Category: apperrors.CategoryGeneralError}.GRPCCode(), "Unexpected Service Error")
}

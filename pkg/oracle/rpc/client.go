package rpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	expcreds "google.golang.org/grpc/experimental/credentials"
	"google.golang.org/grpc/status"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/config"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/oracle"
)

// Client calls a remote oracle over gRPC. It implements oracle.Service.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a client on an existing connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial opens a connection to the oracle described by cfg
func Dial(cfg *config.GRPCClientConfig, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts, err := dialOptions(cfg, extra)
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(cfg.Target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial oracle %s: %w", cfg.Target, err)
	}
	return conn, nil
}

// Sign implements oracle.Service
func (c *Client) Sign(ctx context.Context, view *ledger.FilteredView) (*ledger.Signature, error) {
	out := new(oracle.SignResponse)
	if err := c.conn.Invoke(ctx, SignMethod, view, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, fromStatus(err)
	}
	return &out.Signature, nil
}

// Query implements oracle.Service
func (c *Client) Query(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error) {
	out := new(oracle.QueryResponse)
	if err := c.conn.Invoke(ctx, QueryMethod, &oracle.QueryRequest{Draft: draft}, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, fromStatus(err)
	}
	return &out.Fact, nil
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return apperrors.DependencyError(err, "oracle call failed")
	}
	return apperrors.New(apperrors.CategoryFromGRPCCode(st.Code()), err, st.Message())
}

func dialOptions(cfg *config.GRPCClientConfig, extra []grpc.DialOption) ([]grpc.DialOption, error) {
	var opts []grpc.DialOption

	if cfg.TLS != nil && cfg.TLS.Enabled {
		tlsCfg, err := loadTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("load TLS config: %w", err)
		}
		// ALPN is disabled so connections work through proxies that don't negotiate h2
		opts = append(opts, grpc.WithTransportCredentials(expcreds.NewTLSWithALPNDisabled(tlsCfg)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	if cfg.MaxMessageSize > 0 {
		opts = append(opts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(cfg.MaxMessageSize)))
	}

	return append(opts, extra...), nil
}

func loadTLSConfig(c *config.TLSConfig) (*tls.Config, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // only enabled against local test oracles
	}

	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert/key: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if c.CAFile != "" {
		b, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(b) {
			return nil, fmt.Errorf("append CA certs from PEM failed")
		}
		tlsCfg.RootCAs = pool
	}
	return tlsCfg, nil
}

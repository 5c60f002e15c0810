// Package config loads the YAML configuration of the oracle, notary and requester
// binaries. Defaults come from `default` struct tags and values are checked with
// `validate` tags; secrets can be supplied through environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

// Environment variables overriding secrets from the config file
const (
	EnvMasterKey        = "ORACLE_MASTER_KEY"
	EnvTokenSecret      = "ORACLE_TOKEN_SECRET"
	EnvDatabasePassword = "DATABASE_PASSWORD"
)

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"30s"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GRPCServerConfig contains gRPC server settings
type GRPCServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host" default:"0.0.0.0"`
	Port    int    `yaml:"port" default:"9091" validate:"min=1,max=65535"`
}

// Addr returns the listen address
func (c GRPCServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TLSConfig holds client TLS configuration
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled"`
	CertFile           string `yaml:"cert_file"`
	KeyFile            string `yaml:"key_file"`
	CAFile             string `yaml:"ca_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// GRPCClientConfig describes a gRPC connection to a remote service
type GRPCClientConfig struct {
	Target         string     `yaml:"target" validate:"required"`
	TLS            *TLSConfig `yaml:"tls"`
	MaxMessageSize int        `yaml:"max_message_size"`
}

// MetricsConfig contains prometheus settings
type MetricsConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path" default:"/metrics"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost" validate:"required"`
	Port     int    `yaml:"port" default:"5432"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"vault" validate:"required"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-ca verify-full"`
}

// RedisConfig contains the identity registry cache settings
type RedisConfig struct {
	Addr      string        `yaml:"addr" validate:"required"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix" default:"oracle:identity:"`
	TTL       time.Duration `yaml:"ttl" default:"10m"`
}

// KeyConfig defines where a party's signing key comes from: an AES-GCM encrypted private
// key unlocked with a base64 master key, or a hex seed the key is derived from.
type KeyConfig struct {
	EncryptedKey string `yaml:"encrypted_key"`
	MasterKey    string `yaml:"master_key"`
	Seed         string `yaml:"seed"`
}

// KeyPair loads the configured key. name is the owning party's legal name and selects
// the derived key when a seed is used.
func (c KeyConfig) KeyPair(name string) (*keys.KeyPair, error) {
	switch {
	case c.EncryptedKey != "":
		master, err := keys.MasterKeyFromBase64(c.MasterKey)
		if err != nil {
			return nil, fmt.Errorf("invalid master key: %w", err)
		}
		return keys.LoadEncrypted(c.EncryptedKey, master)
	case c.Seed != "":
		seed, err := hexutil.Decode(c.Seed)
		if err != nil {
			return nil, fmt.Errorf("invalid key seed: %w", err)
		}
		return keys.DeriveKeyPair(name, seed)
	default:
		return nil, errors.New("key.encrypted_key or key.seed is required")
	}
}

// PartyConfig is a network map entry
type PartyConfig struct {
	Name string `yaml:"name" validate:"required"`
	Key  string `yaml:"key" validate:"required"`
}

// Party parses the entry
func (c PartyConfig) Party() (party.Party, error) {
	key, err := keys.ParsePublicKey(c.Key)
	if err != nil {
		return party.Party{}, fmt.Errorf("party %q: %w", c.Name, err)
	}
	return party.New(c.Name, key), nil
}

// NetworkConfig is the static network map shared by all nodes
type NetworkConfig struct {
	Parties  []PartyConfig `yaml:"parties" validate:"dive"`
	Notaries []string      `yaml:"notaries"`
}

// Directory builds the party directory from the network map
func (c NetworkConfig) Directory() (*party.Directory, error) {
	dir := party.NewDirectory()
	for _, pc := range c.Parties {
		p, err := pc.Party()
		if err != nil {
			return nil, err
		}
		dir.Add(p)
	}
	return dir, nil
}

// Notary returns the name of the first configured notary
func (c NetworkConfig) Notary() (string, error) {
	if len(c.Notaries) == 0 {
		return "", errors.New("network.notaries is empty")
	}
	return c.Notaries[0], nil
}

// IdentityRecordConfig seeds the static identity registry
type IdentityRecordConfig struct {
	ID      string `yaml:"id" validate:"required"`
	Kind    string `yaml:"kind" default:"PASSPORT" validate:"oneof=PASSPORT"`
	Subject string `yaml:"subject"`
	Revoked bool   `yaml:"revoked"`
}

// TokenConfig contains the attestation token settings
type TokenConfig struct {
	Secret string        `yaml:"secret" validate:"required,min=32"`
	TTL    time.Duration `yaml:"ttl" default:"24h"`
	// SkipVerify makes the oracle sign any fact in a valid view without checking its token
	SkipVerify bool `yaml:"skip_verify"`
}

// OracleConfig is the configuration of the oracle node
type OracleConfig struct {
	Name     string                 `yaml:"name" validate:"required"`
	Server   ServerConfig           `yaml:"server"`
	GRPC     GRPCServerConfig       `yaml:"grpc"`
	Metrics  MetricsConfig          `yaml:"metrics"`
	Logging  LoggingConfig          `yaml:"logging"`
	Key      KeyConfig              `yaml:"key"`
	Token    TokenConfig            `yaml:"token"`
	Redis    *RedisConfig           `yaml:"redis"`
	Registry []IdentityRecordConfig `yaml:"registry" validate:"dive"`

	// RegistryStatus mounts the unauthenticated registry status lookup on the HTTP router
	RegistryStatus bool `yaml:"registry_status"`
}

// NotaryConfig is the configuration of the notary node
type NotaryConfig struct {
	Name     string          `yaml:"name" validate:"required"`
	Server   ServerConfig    `yaml:"server"`
	Metrics  MetricsConfig   `yaml:"metrics"`
	Logging  LoggingConfig   `yaml:"logging"`
	Key      KeyConfig       `yaml:"key"`
	Database *DatabaseConfig `yaml:"database"`
}

// OracleClientConfig locates the oracle for a requester
type OracleClientConfig struct {
	Name      string            `yaml:"name" validate:"required"`
	Transport string            `yaml:"transport" default:"http" validate:"oneof=http grpc"`
	URL       string            `yaml:"url" validate:"required_if=Transport http"`
	GRPC      *GRPCClientConfig `yaml:"grpc" validate:"required_if=Transport grpc"`
	Timeout   time.Duration     `yaml:"timeout" default:"30s"`
}

// NotaryClientConfig locates the notary for a requester
type NotaryClientConfig struct {
	URL     string        `yaml:"url" validate:"required"`
	Timeout time.Duration `yaml:"timeout" default:"30s"`
}

// RequesterConfig is the configuration of the requesting node
type RequesterConfig struct {
	Name    string             `yaml:"name" validate:"required"`
	Logging LoggingConfig      `yaml:"logging"`
	Key     KeyConfig          `yaml:"key"`
	Network NetworkConfig      `yaml:"network"`
	Oracle  OracleClientConfig `yaml:"oracle"`
	Notary  NotaryClientConfig `yaml:"notary"`
}

// LoadOracle loads the oracle configuration from file
func LoadOracle(path string) (*OracleConfig, error) {
	var cfg OracleConfig
	if err := load(path, &cfg, func() {
		overrideFromEnv(&cfg.Key.MasterKey, EnvMasterKey)
		overrideFromEnv(&cfg.Token.Secret, EnvTokenSecret)
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadNotary loads the notary configuration from file
func LoadNotary(path string) (*NotaryConfig, error) {
	var cfg NotaryConfig
	if err := load(path, &cfg, func() {
		overrideFromEnv(&cfg.Key.MasterKey, EnvMasterKey)
		if cfg.Database != nil {
			overrideFromEnv(&cfg.Database.Password, EnvDatabasePassword)
		}
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadRequester loads the requester configuration from file
func LoadRequester(path string) (*RequesterConfig, error) {
	var cfg RequesterConfig
	if err := load(path, &cfg, func() {
		overrideFromEnv(&cfg.Key.MasterKey, EnvMasterKey)
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(path string, cfg any, env func()) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data, cfg, env)
}

// parse applies defaults after decoding, so zero values are always replaced and boolean
// options default to false.
func parse(data []byte, cfg any, env func()) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if env != nil {
		env()
	}
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func overrideFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

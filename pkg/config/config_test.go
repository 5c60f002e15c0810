package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/identity-oracle/pkg/keys"
)

const seedHex = "0x000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOracleDefaults(t *testing.T) {
	path := writeConfig(t, `
name: "O=Oracle, L=New York, C=US"
key:
  seed: "`+seedHex+`"
token:
  secret: "0123456789abcdef0123456789abcdef"
redis:
  addr: "localhost:6379"
registry:
  - id: P123
    subject: alice
  - id: P999
    revoked: true
`)

	cfg, err := LoadOracle(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 24*time.Hour, cfg.Token.TTL)
	assert.False(t, cfg.Token.SkipVerify)
	require.NotNil(t, cfg.Redis)
	assert.Equal(t, "oracle:identity:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	require.Len(t, cfg.Registry, 2)
	assert.Equal(t, "PASSPORT", cfg.Registry[0].Kind)
	assert.False(t, cfg.Registry[0].Revoked)
	assert.True(t, cfg.Registry[1].Revoked)
	assert.False(t, cfg.RegistryStatus)

	kp, err := cfg.Key.KeyPair(cfg.Name)
	require.NoError(t, err)
	assert.Len(t, kp.PublicKey, keys.PublicKeySize)
}

func TestLoadOracleEnvOverrides(t *testing.T) {
	master, err := keys.GenerateMasterKey()
	require.NoError(t, err)
	kp, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	encrypted, err := keys.EncryptPrivateKey(kp.PrivateKey, master)
	require.NoError(t, err)

	t.Setenv(EnvMasterKey, keys.MasterKeyToBase64(master))
	t.Setenv(EnvTokenSecret, "ffffffffffffffffffffffffffffffffffff")

	path := writeConfig(t, `
name: oracle
key:
  encrypted_key: "`+encrypted+`"
token:
  secret: short
`)
	cfg, err := LoadOracle(path)
	require.NoError(t, err)
	assert.Equal(t, "ffffffffffffffffffffffffffffffffffff", cfg.Token.Secret)

	loaded, err := cfg.Key.KeyPair(cfg.Name)
	require.NoError(t, err)
	assert.True(t, loaded.PublicKey.Equal(kp.PublicKey))
}

func TestLoadOracleValidation(t *testing.T) {
	tests := map[string]string{
		"missing name": `
token:
  secret: "0123456789abcdef0123456789abcdef"
`,
		"short secret": `
name: oracle
token:
  secret: short
`,
		"bad log level": `
name: oracle
logging:
  level: loud
token:
  secret: "0123456789abcdef0123456789abcdef"
`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadOracle(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadOracle(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRequesterNetwork(t *testing.T) {
	oracleKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	notaryKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)

	path := writeConfig(t, `
name: "O=Bank, L=London, C=GB"
key:
  seed: "`+seedHex+`"
network:
  parties:
    - name: "O=Oracle, L=New York, C=US"
      key: "`+oracleKey.PublicKey.Hex()+`"
    - name: "O=Notary, L=Zurich, C=CH"
      key: "`+notaryKey.PublicKey.Hex()+`"
  notaries: ["O=Notary, L=Zurich, C=CH"]
oracle:
  name: "O=Oracle, L=New York, C=US"
  url: "http://localhost:8080"
notary:
  url: "http://localhost:8081"
`)
	cfg, err := LoadRequester(path)
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Oracle.Transport)

	dir, err := cfg.Network.Directory()
	require.NoError(t, err)
	p, err := dir.Resolve(t.Context(), cfg.Oracle.Name)
	require.NoError(t, err)
	assert.True(t, p.Key.Equal(oracleKey.PublicKey))

	notary, err := cfg.Network.Notary()
	require.NoError(t, err)
	assert.Equal(t, "O=Notary, L=Zurich, C=CH", notary)
}

func TestLoadRequesterGRPCRequiresTarget(t *testing.T) {
	path := writeConfig(t, `
name: bank
oracle:
  name: oracle
  transport: grpc
notary:
  url: "http://localhost:8081"
`)
	_, err := LoadRequester(path)
	assert.Error(t, err)
}

func TestKeyConfigRequiresSource(t *testing.T) {
	_, err := KeyConfig{}.KeyPair("bank")
	assert.Error(t, err)

	_, err = KeyConfig{Seed: "nothex"}.KeyPair("bank")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("oracle", LoggingConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	logger.Debug("hello")

	_, err = NewLogger("oracle", LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

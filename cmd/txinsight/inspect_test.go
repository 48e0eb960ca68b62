package main

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umbracle/ethgo"

	"github.com/mowind/txinsight-go/internal/config"
)

const transferCallData = "0xa9059cbb" +
	"0000000000000000000000000000000000000000000000000000000000000abc" +
	"0000000000000000000000000000000000000000000000000000000000000064"

func noFetch(context.Context, string, ethgo.Hash) (*ethgo.Transaction, error) {
	return nil, errors.New("unexpected fetch")
}

func TestBuildInspectRequest(t *testing.T) {
	to := ethgo.HexToAddress("0x1111111111111111111111111111111111111111")
	input, err := hex.DecodeString(transferCallData[2:])
	require.NoError(t, err)

	legacy := &ethgo.Transaction{
		Type:     ethgo.TransactionLegacy,
		Nonce:    1,
		GasPrice: 20000000000,
		Gas:      60000,
		To:       &to,
		Value:    big.NewInt(0),
		Input:    input,
	}
	raw, err := legacy.MarshalRLPTo(nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		opts     inspectOptions
		expected string
	}{
		{
			name:     "call data",
			opts:     inspectOptions{Data: transferCallData},
			expected: `{"data":"` + transferCallData + `"}`,
		},
		{
			name:     "transaction json",
			opts:     inspectOptions{Tx: `{"to":"0x1111111111111111111111111111111111111111","data":"0xc2985578"}`},
			expected: `{"to":"0x1111111111111111111111111111111111111111","data":"0xc2985578"}`,
		},
		{
			name:     "raw transaction",
			opts:     inspectOptions{RawTx: "0x" + hex.EncodeToString(raw)},
			expected: `{"data":"` + transferCallData + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildInspectRequest(context.Background(), tt.opts, noFetch)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(req.Transaction))
		})
	}
}

func TestBuildInspectRequest_TxHash(t *testing.T) {
	hash := "0x" + strings.Repeat("ab", 32)
	input := []byte{0xc2, 0x98, 0x55, 0x78}

	var gotURL string
	var gotHash ethgo.Hash
	fetch := func(_ context.Context, rpcURL string, h ethgo.Hash) (*ethgo.Transaction, error) {
		gotURL, gotHash = rpcURL, h
		return &ethgo.Transaction{Input: input}, nil
	}

	req, err := buildInspectRequest(context.Background(), inspectOptions{TxHash: hash, RPCURL: "http://node:8545"}, fetch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":"0xc2985578"}`, string(req.Transaction))
	assert.Equal(t, "http://node:8545", gotURL)
	assert.Equal(t, ethgo.HexToHash(hash), gotHash)

	notFound := func(context.Context, string, ethgo.Hash) (*ethgo.Transaction, error) { return nil, nil }
	_, err = buildInspectRequest(context.Background(), inspectOptions{TxHash: hash, RPCURL: "http://node:8545"}, notFound)
	assert.ErrorContains(t, err, "not found")
}

func TestBuildInspectRequest_Errors(t *testing.T) {
	validHash := "0x" + strings.Repeat("11", 32)

	tests := []struct {
		name string
		opts inspectOptions
		want string
	}{
		{"no source", inspectOptions{}, "exactly one"},
		{"two sources", inspectOptions{Data: "0x00", Tx: "{}"}, "exactly one"},
		{"bad call data", inspectOptions{Data: "0xzz"}, "invalid --data"},
		{"bad tx json", inspectOptions{Tx: "{"}, "invalid --tx"},
		{"bad raw tx hex", inspectOptions{RawTx: "0x0"}, "invalid --raw-tx"},
		{"unsupported raw tx type", inspectOptions{RawTx: "0x05c0"}, "invalid --raw-tx"},
		{"hash without rpc", inspectOptions{TxHash: validHash}, "--rpc-url"},
		{"short hash", inspectOptions{TxHash: "0x1234", RPCURL: "http://node"}, "invalid --tx-hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildInspectRequest(context.Background(), tt.opts, noFetch)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, registerFlags(cmd, v))

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultHTTPHost, cfg.HTTP.Host)
	assert.Equal(t, config.DefaultHTTPPort, cfg.HTTP.Port)
	assert.Equal(t, config.DefaultDirectoryURL, cfg.Directory.URL)
	assert.Equal(t, config.DefaultDirectoryTimeout, cfg.Directory.Timeout)
	assert.Equal(t, 0, cfg.Directory.Retries)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, []string{"/health", "/ready", "/metrics"}, cfg.Auth.Whitelist)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, registerFlags(cmd, v))

	require.NoError(t, cmd.ParseFlags([]string{
		"--directory-url", "http://localhost:8080/api/v1/signatures/",
		"--directory-retries", "2",
		"--auth-enabled",
		"--auth-secret", "s3cret",
		"--log-format", "json",
	}))

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/signatures/", cfg.Directory.URL)
	assert.Equal(t, 2, cfg.Directory.Retries)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NotContains(t, cfg.String(), "s3cret")
}

func TestLoadConfig_Invalid(t *testing.T) {
	v := viper.New()
	cmd := &cobra.Command{Use: "test"}
	require.NoError(t, registerFlags(cmd, v))
	require.NoError(t, cmd.ParseFlags([]string{"--auth-enabled"}))

	_, err := loadConfig(v)
	assert.ErrorContains(t, err, "auth-secret")
}

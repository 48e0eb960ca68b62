package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/umbracle/ethgo"
	ethgojsonrpc "github.com/umbracle/ethgo/jsonrpc"

	"github.com/mowind/txinsight-go/internal/directory"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/utils"
)

// inspectOptions inspect 子命令的输入，四种来源只能指定一种
type inspectOptions struct {
	Data   string
	Tx     string
	RawTx  string
	TxHash string
	RPCURL string
}

var inspectOpts inspectOptions

// inspectCmd 检查单笔交易并打印结果
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect a single transaction and print its insight as JSON",
	Example: `  txinsight inspect --data 0xa9059cbb...
  txinsight inspect --tx '{"to":"0x...","data":"0x..."}'
  txinsight inspect --raw-tx 0x02f8...
  txinsight inspect --tx-hash 0x... --rpc-url http://localhost:8545`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	fs := inspectCmd.Flags()
	fs.StringVar(&inspectOpts.Data, "data", "", "hex call data (selector followed by arguments)")
	fs.StringVar(&inspectOpts.Tx, "tx", "", "transaction JSON object")
	fs.StringVar(&inspectOpts.RawTx, "raw-tx", "", "signed RLP-encoded transaction")
	fs.StringVar(&inspectOpts.TxHash, "tx-hash", "", "hash of a transaction to fetch from --rpc-url")
	fs.StringVar(&inspectOpts.RPCURL, "rpc-url", "", "node JSON-RPC endpoint used with --tx-hash")
}

// transactionFetcher 按哈希获取链上交易
type transactionFetcher func(ctx context.Context, rpcURL string, hash ethgo.Hash) (*ethgo.Transaction, error)

// runInspect 是 inspect 子命令的执行函数
func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := apperrors.NewLogger(&apperrors.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stderr",
	})
	if err != nil {
		return err
	}

	req, err := buildInspectRequest(cmd.Context(), inspectOpts, fetchTransaction)
	if err != nil {
		return err
	}

	inspector := insight.NewInspector(directory.NewClient(&cfg.Directory, logger), logger)
	resp, err := inspector.OnTransaction(cmd.Context(), req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal insight: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// buildInspectRequest 将命令行输入转换为检查请求
func buildInspectRequest(ctx context.Context, opts inspectOptions, fetch transactionFetcher) (insight.Request, error) {
	sources := 0
	for _, s := range []string{opts.Data, opts.Tx, opts.RawTx, opts.TxHash} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return insight.Request{}, errors.New("exactly one of --data, --tx, --raw-tx or --tx-hash is required")
	}

	switch {
	case opts.Data != "":
		data, err := utils.HexToBytes(opts.Data)
		if err != nil {
			return insight.Request{}, fmt.Errorf("invalid --data: %w", err)
		}
		return insight.Request{Transaction: insight.TransactionFromCallData(data)}, nil

	case opts.Tx != "":
		if !json.Valid([]byte(opts.Tx)) {
			return insight.Request{}, errors.New("invalid --tx: not a JSON document")
		}
		return insight.Request{Transaction: json.RawMessage(opts.Tx)}, nil

	case opts.RawTx != "":
		raw, err := utils.HexToBytes(opts.RawTx)
		if err != nil {
			return insight.Request{}, fmt.Errorf("invalid --raw-tx: %w", err)
		}
		data, err := insight.CallDataFromRawTransaction(raw)
		if err != nil {
			return insight.Request{}, fmt.Errorf("invalid --raw-tx: %w", err)
		}
		return insight.Request{Transaction: insight.TransactionFromCallData(data)}, nil
	}

	if opts.RPCURL == "" {
		return insight.Request{}, errors.New("--rpc-url is required with --tx-hash")
	}
	if !utils.IsHexString(opts.TxHash) || len(utils.Remove0x(opts.TxHash)) != 64 {
		return insight.Request{}, errors.New("invalid --tx-hash: expected 32 bytes of hex")
	}
	txn, err := fetch(ctx, opts.RPCURL, ethgo.HexToHash(opts.TxHash))
	if err != nil {
		return insight.Request{}, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if txn == nil {
		return insight.Request{}, fmt.Errorf("transaction %s not found", opts.TxHash)
	}
	return insight.Request{Transaction: insight.TransactionFromCallData(txn.Input)}, nil
}

// fetchTransaction 通过节点 JSON-RPC 获取交易
func fetchTransaction(_ context.Context, rpcURL string, hash ethgo.Hash) (*ethgo.Transaction, error) {
	client, err := ethgojsonrpc.NewClient(rpcURL)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.Eth().GetTransactionByHash(hash)
}

package insight

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/umbracle/ethgo"
	"github.com/umbracle/fastrlp"
	"github.com/valyala/fastjson"

	"github.com/mowind/txinsight-go/internal/utils"
)

// 交易信封类型
const (
	TxTypeAccessList byte = 0x01
	TxTypeDynamicFee byte = 0x02
	TxTypeBlob       byte = 0x03
	TxTypeSetCode    byte = 0x04
)

// 交易解析错误
var (
	// ErrEmptyTransaction 原始交易为空
	ErrEmptyTransaction = errors.New("empty raw transaction")
	// ErrUnsupportedTxType 不支持的交易信封类型
	ErrUnsupportedTxType = errors.New("unsupported transaction type")
	// ErrMalformedTransaction 原始交易的 RLP 结构不符合预期
	ErrMalformedTransaction = errors.New("malformed raw transaction")
)

// blobDataIndex 是 0x03/0x04 交易负载中 data 字段的位置
// [chainId, nonce, maxPriorityFeePerGas, maxFeePerGas, gas, to, value, data, ...]
const blobDataIndex = 7

var jsonParserPool fastjson.ParserPool

// ExtractCallData 读取交易对象的 data 字段
//
// 交易不是 JSON 对象、缺少 data 或 data 不是字符串时 ok 为 false。
// 除此之外不做任何校验，data 原样返回。
func ExtractCallData(tx []byte) (data string, ok bool) {
	if len(tx) == 0 {
		return "", false
	}

	p := jsonParserPool.Get()
	defer jsonParserPool.Put(p)

	v, err := p.ParseBytes(tx)
	if err != nil || v.Type() != fastjson.TypeObject {
		return "", false
	}

	field := v.Get("data")
	if field == nil || field.Type() != fastjson.TypeString {
		return "", false
	}

	b, err := field.StringBytes()
	if err != nil {
		return "", false
	}
	return string(b), true
}

// TransactionFromCallData 构造只包含 data 字段的交易对象
func TransactionFromCallData(data []byte) json.RawMessage {
	var a fastjson.Arena
	obj := a.NewObject()
	obj.Set("data", a.NewString(utils.BytesToHex(data)))
	return obj.MarshalTo(nil)
}

// CallDataFromRawTransaction 从已签名的原始交易中取出调用数据
//
// 支持 legacy 交易以及 0x01、0x02、0x03、0x04 类型信封。
// 0x03 交易同时接受带 blob 附件的网络封装格式。
func CallDataFromRawTransaction(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyTransaction
	}

	switch first := raw[0]; {
	case first >= 0xc0, first == TxTypeAccessList, first == TxTypeDynamicFee:
		tx := &ethgo.Transaction{}
		if err := tx.UnmarshalRLP(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
		}
		return tx.Input, nil
	case first == TxTypeBlob, first == TxTypeSetCode:
		return callDataFromEnvelope(first, raw[1:])
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedTxType, first)
	}
}

// callDataFromEnvelope 用 fastrlp 解析较新的交易信封
func callDataFromEnvelope(txType byte, payload []byte) ([]byte, error) {
	p := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(p)

	v, err := p.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	if v.Type() != fastrlp.TypeArray {
		return nil, fmt.Errorf("%w: expected list payload", ErrMalformedTransaction)
	}

	// 网络封装格式: [tx_payload_body, blobs, commitments, proofs]
	if txType == TxTypeBlob && v.Elems() > 0 && v.Get(0).Type() == fastrlp.TypeArray {
		v = v.Get(0)
	}

	if v.Elems() <= blobDataIndex {
		return nil, fmt.Errorf("%w: expected more than %d fields, got %d", ErrMalformedTransaction, blobDataIndex, v.Elems())
	}

	data, err := v.Get(blobDataIndex).GetBytes(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: data field: %v", ErrMalformedTransaction, err)
	}
	return data, nil
}

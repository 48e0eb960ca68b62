// Package insight turns an outgoing transaction into a human-readable
// description of the contract call it makes.
//
// The pipeline reads the transaction's call data, resolves the 4-byte
// selector against a signature directory, and decodes the arguments
// against the resolved signature. Transactions that cannot be resolved
// fall back to an "Unknown Transaction" insight; lookup and decode
// failures are returned as errors.
package insight

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/mowind/txinsight-go/internal/abi"
	"github.com/mowind/txinsight-go/internal/directory"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/metrics"
	"github.com/mowind/txinsight-go/internal/utils"
)

// UnknownTransaction 未能解析出签名时的默认类型
const UnknownTransaction = "Unknown Transaction"

// selectorHexLen 选择器的十六进制长度
const selectorHexLen = 8

// Request 检查请求
type Request struct {
	Transaction json.RawMessage `json:"transaction"`
}

// Insight 交易说明
type Insight struct {
	Type   string      `json:"type"`
	Params interface{} `json:"params,omitempty"`
}

// Response 检查结果
type Response struct {
	Insights Insight `json:"insights"`
}

// Observer 接收检查结果
type Observer interface {
	ObserveInspection(outcome string)
}

// Inspector 交易检查器
//
// 只持有不可变的协作者，可以并发使用。
type Inspector struct {
	resolver directory.Resolver
	logger   *logrus.Logger
	observer Observer
}

var _ Observer = (*metrics.Collector)(nil)

// converter 无状态，查询和解码两条路径共用
var converter = apperrors.NewConverter()

// NewInspector 创建交易检查器
func NewInspector(resolver directory.Resolver, logger *logrus.Logger) *Inspector {
	return &Inspector{
		resolver: resolver,
		logger:   logger,
	}
}

// SetObserver 设置检查结果观察者
func (i *Inspector) SetObserver(o Observer) {
	i.observer = o
}

// OnTransaction 检查一笔交易
func (i *Inspector) OnTransaction(ctx context.Context, req Request) (*Response, error) {
	data, ok := ExtractCallData(req.Transaction)
	if !ok {
		apperrors.WithContext(i.logger, ctx).Info("Transaction has no string call data, returning unknown insight")
		i.observe(metrics.OutcomeUnknown)
		return unknownResponse(), nil
	}
	return i.InspectCallData(ctx, data)
}

// InspectCallData 检查一段十六进制调用数据
//
// 选择器取去掉 0x 后的前 8 个字符，不足 8 个字符时取全部，其余部分为参数。
func (i *Inspector) InspectCallData(ctx context.Context, data string) (*Response, error) {
	selector, payload := splitSelector(utils.Remove0x(data))
	log := apperrors.WithContext(i.logger, ctx).WithField("selector", utils.Add0x(selector))

	signature, found, err := i.resolver.Resolve(ctx, selector)
	if err != nil {
		i.observe(metrics.OutcomeLookupError)
		return nil, converter.FromDirectory(err).WithContext("selector", utils.Add0x(selector))
	}
	if !found {
		log.Info("No signature found for selector, returning unknown insight")
		i.observe(metrics.OutcomeUnknown)
		return unknownResponse(), nil
	}

	resp := &Response{Insights: Insight{Type: signature}}

	params, decodeErr := decodeHexPayload(signature, payload)
	if decodeErr != nil {
		i.observe(metrics.OutcomeDecodeError)
		return nil, decodeErr.WithContext("selector", utils.Add0x(selector))
	}

	log.WithFields(logrus.Fields{
		"signature": signature,
		"function":  abi.FunctionName(signature),
	}).Debug("Decoded call data")

	resp.Insights.Params = params
	i.observe(metrics.OutcomeDecoded)
	return resp, nil
}

// DecodeCallData 按已知签名解码完整调用数据，不进行签名查询
//
// data 包含选择器，选择器部分被跳过而不做校验。
func DecodeCallData(signature, data string) ([]interface{}, error) {
	_, payload := splitSelector(utils.Remove0x(data))
	params, err := decodeHexPayload(signature, payload)
	if err != nil {
		return nil, err
	}
	return params, nil
}

// DecodeArguments 按签名解码参数字节并规范化
func DecodeArguments(signature string, payload []byte) ([]interface{}, error) {
	types, err := abi.ParseParams(signature)
	if err != nil {
		return nil, err
	}
	values, err := abi.Decode(types, payload)
	if err != nil {
		return nil, err
	}
	return Normalize(values).([]interface{}), nil
}

// decodeHexPayload 解析十六进制参数并解码，错误统一包装为解码失败
func decodeHexPayload(signature, payload string) ([]interface{}, *apperrors.AppError) {
	raw, err := utils.HexToBytes(payload)
	if err != nil {
		return nil, converter.FromDecode(err).WithContext("signature", signature)
	}

	params, err := DecodeArguments(signature, raw)
	if err != nil {
		return nil, converter.FromDecode(err).WithContext("signature", signature)
	}
	return params, nil
}

// splitSelector 切分选择器和参数部分
func splitSelector(hexData string) (selector, payload string) {
	if len(hexData) <= selectorHexLen {
		return hexData, ""
	}
	return hexData[:selectorHexLen], hexData[selectorHexLen:]
}

func unknownResponse() *Response {
	return &Response{Insights: Insight{Type: UnknownTransaction}}
}

func (i *Inspector) observe(outcome string) {
	if i.observer != nil {
		i.observer.ObserveInspection(outcome)
	}
}

package router

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mowind/txinsight-go/internal/directory"
	apperrors "github.com/mowind/txinsight-go/internal/errors"
	"github.com/mowind/txinsight-go/internal/insight"
	"github.com/mowind/txinsight-go/internal/jsonrpc"
	"github.com/mowind/txinsight-go/internal/utils"
)

// InsightHandler 处理交易检查相关的 JSON-RPC 方法
type InsightHandler struct {
	*BaseHandler
	inspector *insight.Inspector
	resolver  directory.Resolver
}

// decodeCallDataParams txinsight_decodeCallData 的参数
type decodeCallDataParams struct {
	Signature string `json:"signature"`
	Data      string `json:"data"`
}

// NewInsightHandler 创建交易检查处理器
func NewInsightHandler(inspector *insight.Inspector, resolver directory.Resolver, logger *logrus.Logger) *InsightHandler {
	return &InsightHandler{
		BaseHandler: NewBaseHandler("insight_handler", logger),
		inspector:   inspector,
		resolver:    resolver,
	}
}

// Handle 处理 JSON-RPC 请求
func (h *InsightHandler) Handle(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	h.LogRequest(request)
	response, err := h.dispatch(ctx, request)
	h.LogResponse(request, response, err)
	return response, err
}

func (h *InsightHandler) dispatch(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	switch request.Method {
	case jsonrpc.MethodOnTransaction:
		return h.handleOnTransaction(ctx, request)
	case jsonrpc.MethodResolveSignature:
		return h.handleResolveSignature(ctx, request)
	case jsonrpc.MethodDecodeCallData:
		return h.handleDecodeCallData(request)
	default:
		return h.CreateErrorResponse(request.ID, jsonrpc.CodeMethodNotFound,
			"Method not supported by insight handler", nil), nil
	}
}

// handleOnTransaction 处理 txinsight_onTransaction 方法
func (h *InsightHandler) handleOnTransaction(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	var req insight.Request
	if err := h.ParseParams(request.Params, &req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse txinsight_onTransaction params")
		return h.CreateInvalidParamsResponse(request.ID, "Invalid params: "+err.Error()), nil
	}

	resp, err := h.inspector.OnTransaction(ctx, req)
	if err != nil {
		return nil, err
	}
	return h.CreateSuccessResponse(request.ID, resp)
}

// handleResolveSignature 处理 txinsight_resolveSignature 方法
//
// 未找到签名时结果为 null。
func (h *InsightHandler) handleResolveSignature(ctx context.Context, request *jsonrpc.Request) (*jsonrpc.Response, error) {
	params, err := h.ValidateParams(request.Params, 1)
	if err != nil {
		return h.CreateInvalidParamsResponse(request.ID, "Invalid params: "+err.Error()), nil
	}

	selector, ok := params[0].(string)
	if !ok || !utils.IsValidSelector(strings.ToLower(utils.Add0x(selector))) {
		return h.CreateInvalidParamsResponse(request.ID, "Invalid params: selector must be 4 bytes of hex"), nil
	}

	signature, found, err := h.resolver.Resolve(ctx, strings.ToLower(utils.Remove0x(selector)))
	if err != nil {
		return nil, apperrors.NewConverter().FromDirectory(err).WithContext("selector", utils.Add0x(selector))
	}
	if !found {
		return h.CreateSuccessResponse(request.ID, nil)
	}
	return h.CreateSuccessResponse(request.ID, signature)
}

// handleDecodeCallData 处理 txinsight_decodeCallData 方法
func (h *InsightHandler) handleDecodeCallData(request *jsonrpc.Request) (*jsonrpc.Response, error) {
	var params decodeCallDataParams
	if err := h.ParseParams(request.Params, &params); err != nil {
		return h.CreateInvalidParamsResponse(request.ID, "Invalid params: "+err.Error()), nil
	}
	if params.Signature == "" {
		return h.CreateInvalidParamsResponse(request.ID, "Invalid params: signature is required"), nil
	}

	decoded, err := insight.DecodeCallData(params.Signature, params.Data)
	if err != nil {
		return nil, err
	}
	return h.CreateSuccessResponse(request.ID, decoded)
}

package abi

import "errors"

// 解码错误
var (
	// ErrUnknownType 无法识别的类型名
	ErrUnknownType = errors.New("unknown abi type")
	// ErrMalformedSignature 函数签名格式错误
	ErrMalformedSignature = errors.New("malformed signature")
	// ErrInsufficientData 调用数据长度不足
	ErrInsufficientData = errors.New("insufficient call data")
	// ErrInvalidOffset 动态类型偏移量越界
	ErrInvalidOffset = errors.New("invalid offset")
	// ErrValueOutOfRange 数值超出类型位宽
	ErrValueOutOfRange = errors.New("value out of range")
	// ErrOutputTooLarge 偏移量重复引用同一段数据导致输出膨胀
	ErrOutputTooLarge = errors.New("decoded output too large")
)

// IsDecodeError 检查错误是否来自类型解析或调用数据解码
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrMalformedSignature) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrInvalidOffset) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrOutputTooLarge)
}

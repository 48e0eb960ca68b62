package insight

import (
	"math/big"

	"github.com/umbracle/ethgo"

	"github.com/mowind/txinsight-go/internal/utils"
)

// Normalize 将解码结果转换为可直接 JSON 序列化的值
//
// 字节序列和地址转为小写 0x 十六进制字符串，大整数转为十进制字符串，
// 列表逐元素递归处理，其余值原样返回。对已规范化的值再次调用结果不变。
func Normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = Normalize(elem)
		}
		return out
	case []byte:
		return utils.BytesToHex(val)
	case *big.Int:
		if val == nil {
			return nil
		}
		return val.String()
	case big.Int:
		return val.String()
	case ethgo.Address:
		return utils.BytesToHex(val[:])
	case *ethgo.Address:
		if val == nil {
			return nil
		}
		return utils.BytesToHex(val[:])
	default:
		return v
	}
}

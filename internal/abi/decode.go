package abi

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/umbracle/ethgo"
)

// Decode 按类型名列表解码调用数据（不含选择器）
//
// 返回值与类型一一对应：
//   - uintN / intN: *big.Int
//   - bool: bool
//   - address: ethgo.Address
//   - bytesN / bytes / function: []byte
//   - string: string
//   - 元组、定长数组、变长数组: []interface{}
func Decode(types []string, data []byte) ([]interface{}, error) {
	if len(types) == 0 {
		return []interface{}{}, nil
	}

	parsed := make([]*Type, len(types))
	for i, name := range types {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		parsed[i] = t
	}
	return DecodeTypes(parsed, data)
}

// DecodeTypes 按类型描述符列表解码调用数据
func DecodeTypes(types []*Type, data []byte) ([]interface{}, error) {
	if len(types) == 0 {
		return []interface{}{}, nil
	}
	d := newDecoder(data)
	return d.decodeList(0, len(types), func(i int) *Type { return types[i] })
}

// maxExpansion 限制解码输出相对输入的放大倍数
//
// 正常编码中每个值至少占一个槽位，偏移量互相指向同一段尾部数据时
// 输出才会超过输入，这类数据按解码失败处理。
const maxExpansion = 2

// decoder 持有一次解码的输入和剩余的输出额度
type decoder struct {
	data   []byte
	budget int
}

func newDecoder(data []byte) *decoder {
	return &decoder{data: data, budget: addSat(mulSat(maxExpansion, len(data)), wordSize)}
}

// charge 扣减输出额度：每个值计 1，bytes/string 另计内容长度
func (d *decoder) charge(n int) error {
	if n > d.budget {
		return fmt.Errorf("%w: decoded output exceeds %d times the %d bytes of input", ErrOutputTooLarge, maxExpansion, len(d.data))
	}
	d.budget -= n
	return nil
}

// decodeList 解码一个以 base 为起点的头部/尾部序列（元组或数组）
//
// 动态成员的偏移量相对于 base。
func (d *decoder) decodeList(base, n int, typeAt func(i int) *Type) ([]interface{}, error) {
	// 先检查头部区域是否完整，避免为超大长度分配内存
	if n > len(d.data) {
		return nil, fmt.Errorf("%w: %d elements in %d bytes of data", ErrInsufficientData, n, len(d.data))
	}
	// 成员头部大小至少 32 字节，累加超过数据长度即可停止
	size := 0
	for i := 0; i < n && size <= len(d.data); i++ {
		size = addSat(size, typeAt(i).headSize())
	}
	if err := need(d.data, base, size); err != nil {
		return nil, err
	}

	values := make([]interface{}, n)
	head := base
	for i := 0; i < n; i++ {
		t := typeAt(i)
		if t.IsDynamic() {
			ptr, err := readUint(d.data, head, ErrInvalidOffset)
			if err != nil {
				return nil, err
			}
			if ptr > len(d.data)-base {
				return nil, fmt.Errorf("%w: offset %d exceeds %d bytes of data", ErrInvalidOffset, ptr, len(d.data))
			}
			if values[i], err = d.decodeValue(base+ptr, t); err != nil {
				return nil, err
			}
			head += wordSize
			continue
		}

		v, err := d.decodeValue(head, t)
		if err != nil {
			return nil, err
		}
		values[i] = v
		head = addSat(head, t.headSize())
	}
	return values, nil
}

// decodeValue 解码位于 pos 的单个值
func (d *decoder) decodeValue(pos int, t *Type) (interface{}, error) {
	if err := d.charge(1); err != nil {
		return nil, err
	}

	switch t.Kind {
	case KindTuple:
		return d.decodeList(pos, len(t.Elems), func(i int) *Type { return t.Elems[i] })

	case KindArray:
		return d.decodeList(pos, t.Size, func(int) *Type { return t.Elem })

	case KindSlice:
		n, err := readUint(d.data, pos, ErrInsufficientData)
		if err != nil {
			return nil, err
		}
		return d.decodeList(pos+wordSize, n, func(int) *Type { return t.Elem })

	case KindBytes, KindString:
		payload, err := d.readPayload(pos)
		if err != nil {
			return nil, err
		}
		if t.Kind == KindString {
			return string(payload), nil
		}
		return payload, nil
	}

	slot, err := readSlot(d.data, pos)
	if err != nil {
		return nil, err
	}
	return decodeElementary(slot, t)
}

// decodeElementary 解码 32 字节槽位中的基础类型
func decodeElementary(slot []byte, t *Type) (interface{}, error) {
	switch t.Kind {
	case KindUInt:
		v := new(big.Int).SetBytes(slot)
		if v.BitLen() > t.Size {
			return nil, fmt.Errorf("%w: %s does not fit in %s", ErrValueOutOfRange, v.String(), t)
		}
		return v, nil

	case KindInt:
		v := new(big.Int).SetBytes(slot)
		if slot[0]&0x80 != 0 {
			v.Sub(v, twoTo256)
		}
		if !fitsSigned(v, t.Size) {
			return nil, fmt.Errorf("%w: %s does not fit in %s", ErrValueOutOfRange, v.String(), t)
		}
		return v, nil

	case KindBool:
		return slot[wordSize-1]&1 == 1, nil

	case KindAddress:
		var addr ethgo.Address
		copy(addr[:], slot[wordSize-len(addr):])
		return addr, nil

	case KindFixedBytes, KindFunction:
		out := make([]byte, t.Size)
		copy(out, slot[:t.Size])
		return out, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownType, t)
}

var twoTo256 = new(big.Int).Lsh(big.NewInt(1), 256)

// fitsSigned 检查 v 是否在 intN 的取值范围内
func fitsSigned(v *big.Int, bits int) bool {
	if v.Sign() >= 0 {
		return v.BitLen() <= bits-1
	}
	// -2^(bits-1) <= v  等价于  |v|-1 < 2^(bits-1)
	abs := new(big.Int).Neg(v)
	abs.Sub(abs, big.NewInt(1))
	return abs.BitLen() <= bits-1
}

// readPayload 读取长度前缀及其后的字节内容
func (d *decoder) readPayload(pos int) ([]byte, error) {
	n, err := readUint(d.data, pos, ErrInsufficientData)
	if err != nil {
		return nil, err
	}
	start := pos + wordSize
	if err := need(d.data, start, n); err != nil {
		return nil, err
	}
	if err := d.charge(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, d.data[start:start+n])
	return out, nil
}

// readUint 将槽位读取为长度或偏移量，值必须不超过数据长度
func readUint(data []byte, pos int, sentinel error) (int, error) {
	slot, err := readSlot(data, pos)
	if err != nil {
		return 0, err
	}
	for _, b := range slot[:wordSize-8] {
		if b != 0 {
			return 0, fmt.Errorf("%w: value at %d is too large", sentinel, pos)
		}
	}
	v := binary.BigEndian.Uint64(slot[wordSize-8:])
	if v > uint64(len(data)) {
		return 0, fmt.Errorf("%w: value %d at %d exceeds %d bytes of data", sentinel, v, pos, len(data))
	}
	return int(v), nil
}

// readSlot 读取 pos 处的 32 字节槽位
func readSlot(data []byte, pos int) ([]byte, error) {
	if err := need(data, pos, wordSize); err != nil {
		return nil, err
	}
	return data[pos : pos+wordSize], nil
}

// need 检查 data 在 pos 之后是否至少还有 n 字节
func need(data []byte, pos, n int) error {
	if pos < 0 || n < 0 || pos > len(data) || n > len(data)-pos {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrInsufficientData, n, pos, len(data))
	}
	return nil
}

// Package abi parses contract ABI type names and decodes call data against them.
//
// Type names are parsed once into a Type descriptor; decoding walks the
// descriptor recursively and never re-parses strings.
package abi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind 类型种类
type Kind int

const (
	// KindUInt 无符号整数 uintN
	KindUInt Kind = iota
	// KindInt 有符号整数 intN
	KindInt
	// KindBool 布尔值
	KindBool
	// KindAddress 20 字节地址
	KindAddress
	// KindFixedBytes 定长字节 bytesN
	KindFixedBytes
	// KindFunction 外部函数引用（地址 + 选择器，24 字节）
	KindFunction
	// KindBytes 变长字节
	KindBytes
	// KindString 字符串
	KindString
	// KindArray 定长数组 T[k]
	KindArray
	// KindSlice 变长数组 T[]
	KindSlice
	// KindTuple 元组 (T1,T2,...)
	KindTuple
)

var kindNames = map[Kind]string{
	KindUInt:       "uint",
	KindInt:        "int",
	KindBool:       "bool",
	KindAddress:    "address",
	KindFixedBytes: "fixedBytes",
	KindFunction:   "function",
	KindBytes:      "bytes",
	KindString:     "string",
	KindArray:      "array",
	KindSlice:      "slice",
	KindTuple:      "tuple",
}

// String 返回种类名称
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// wordSize 是 ABI 编码的槽位大小
const wordSize = 32

// Type 是解析后的类型描述符
type Type struct {
	// Kind 类型种类
	Kind Kind
	// Size 整数位宽、定长字节长度或定长数组长度
	Size int
	// Elem 数组元素类型（KindArray、KindSlice）
	Elem *Type
	// Elems 元组成员类型（KindTuple）
	Elems []*Type
}

// ParseType 将类型名解析为类型描述符
func ParseType(name string) (*Type, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return nil, fmt.Errorf("%w: empty type name", ErrUnknownType)
	}

	// 数组后缀：最外层维度在最右边
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
		}
		elem, err := ParseType(s[:open])
		if err != nil {
			return nil, err
		}
		dim := s[open+1 : len(s)-1]
		if dim == "" {
			return &Type{Kind: KindSlice, Elem: elem}, nil
		}
		n, err := strconv.Atoi(dim)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid array length in %q", ErrUnknownType, name)
		}
		return &Type{Kind: KindArray, Size: n, Elem: elem}, nil
	}

	if strings.HasPrefix(s, "tuple(") {
		s = s[len("tuple"):]
	}
	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
		}
		parts, err := splitTopLevel(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		// 空元组不占编码空间，无法约束数组长度
		if len(parts) == 0 {
			return nil, fmt.Errorf("%w: empty tuple in %q", ErrUnknownType, name)
		}
		elems := make([]*Type, len(parts))
		for i, part := range parts {
			if elems[i], err = ParseType(part); err != nil {
				return nil, err
			}
		}
		return &Type{Kind: KindTuple, Elems: elems}, nil
	}

	return parseElementary(s)
}

// parseElementary 解析基础类型
func parseElementary(s string) (*Type, error) {
	switch s {
	case "address":
		return &Type{Kind: KindAddress}, nil
	case "bool":
		return &Type{Kind: KindBool}, nil
	case "string":
		return &Type{Kind: KindString}, nil
	case "bytes":
		return &Type{Kind: KindBytes}, nil
	case "byte":
		return &Type{Kind: KindFixedBytes, Size: 1}, nil
	case "function":
		return &Type{Kind: KindFunction, Size: 24}, nil
	case "uint":
		return &Type{Kind: KindUInt, Size: 256}, nil
	case "int":
		return &Type{Kind: KindInt, Size: 256}, nil
	}

	switch {
	case strings.HasPrefix(s, "uint"):
		bits, ok := parseWidth(s[len("uint"):], 8, 256, 8)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, s)
		}
		return &Type{Kind: KindUInt, Size: bits}, nil
	case strings.HasPrefix(s, "int"):
		bits, ok := parseWidth(s[len("int"):], 8, 256, 8)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, s)
		}
		return &Type{Kind: KindInt, Size: bits}, nil
	case strings.HasPrefix(s, "bytes"):
		n, ok := parseWidth(s[len("bytes"):], 1, 32, 1)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, s)
		}
		return &Type{Kind: KindFixedBytes, Size: n}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// parseWidth 解析类型名中的位宽/长度后缀
func parseWidth(s string, lo, hi, step int) (int, bool) {
	if s == "" || s[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi || n%step != 0 {
		return 0, false
	}
	return n, true
}

// IsDynamic 报告该类型是否为动态类型（编码时头部只存偏移量）
func (t *Type) IsDynamic() bool {
	switch t.Kind {
	case KindBytes, KindString, KindSlice:
		return true
	case KindArray:
		return t.Elem.IsDynamic()
	case KindTuple:
		for _, e := range t.Elems {
			if e.IsDynamic() {
				return true
			}
		}
	}
	return false
}

// headSize 返回该类型在头部区域占用的字节数
//
// 动态类型只占一个偏移槽；静态元组和静态定长数组内联展开。
func (t *Type) headSize() int {
	if t.IsDynamic() {
		return wordSize
	}
	switch t.Kind {
	case KindArray:
		return mulSat(t.Size, t.Elem.headSize())
	case KindTuple:
		total := 0
		for _, e := range t.Elems {
			total = addSat(total, e.headSize())
		}
		return total
	default:
		return wordSize
	}
}

// String 返回规范化的类型名
func (t *Type) String() string {
	switch t.Kind {
	case KindUInt:
		return "uint" + strconv.Itoa(t.Size)
	case KindInt:
		return "int" + strconv.Itoa(t.Size)
	case KindFixedBytes:
		return "bytes" + strconv.Itoa(t.Size)
	case KindArray:
		return t.Elem.String() + "[" + strconv.Itoa(t.Size) + "]"
	case KindSlice:
		return t.Elem.String() + "[]"
	case KindTuple:
		names := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			names[i] = e.String()
		}
		return "(" + strings.Join(names, ",") + ")"
	default:
		return t.Kind.String()
	}
}

// mulSat 饱和乘法，避免超大数组长度导致整数溢出
func mulSat(a, b int) int {
	if a != 0 && b > math.MaxInt32/a {
		return math.MaxInt32
	}
	return a * b
}

// addSat 饱和加法
func addSat(a, b int) int {
	if a > math.MaxInt32-b {
		return math.MaxInt32
	}
	return a + b
}

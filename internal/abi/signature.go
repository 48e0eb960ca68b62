package abi

import (
	"fmt"
	"strings"

	"github.com/umbracle/ethgo"
)

// ParseParams 从文本签名中提取有序的参数类型列表
//
// 取第一个 "(" 与其匹配的 ")" 之间的内容，只在最外层逗号处切分，
// 因此 "f((uint256,address)[],bool)" 得到两个参数类型。
// "name()" 返回空列表。
func ParseParams(signature string) ([]string, error) {
	open := strings.IndexByte(signature, '(')
	if open < 0 {
		return nil, fmt.Errorf("%w: missing '(' in %q", ErrMalformedSignature, signature)
	}

	closing := matchParen(signature, open)
	if closing < 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformedSignature, signature)
	}

	return splitTopLevel(signature[open+1 : closing])
}

// FunctionName 返回签名中 "(" 之前的函数名
func FunctionName(signature string) string {
	if open := strings.IndexByte(signature, '('); open >= 0 {
		return strings.TrimSpace(signature[:open])
	}
	return strings.TrimSpace(signature)
}

// Selector 计算文本签名的 4 字节选择器（keccak256 前 4 字节）
func Selector(signature string) [4]byte {
	var sel [4]byte
	copy(sel[:], ethgo.Keccak256([]byte(signature)))
	return sel
}

// matchParen 返回与 open 位置的 "(" 匹配的 ")" 下标，找不到时返回 -1
func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel 在括号深度为 0 的逗号处切分，并去除空白
func splitTopLevel(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{}, nil
	}

	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformedSignature, s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformedSignature, s)
	}
	return append(parts, strings.TrimSpace(s[start:])), nil
}

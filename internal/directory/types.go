package directory

import "sort"

// Signature 表示签名目录中的一条候选签名
type Signature struct {
	ID             int64  `json:"id"`
	CreatedAt      string `json:"created_at"`
	TextSignature  string `json:"text_signature"`
	HexSignature   string `json:"hex_signature"`
	BytesSignature string `json:"bytes_signature"`
}

// Page 表示签名目录的分页查询结果
type Page struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []Signature `json:"results"`
}

// SelectEarliest 按创建时间选出最早登记的候选签名
//
// created_at 按字节序比较（ISO-8601 字符串可直接排序），相同时按 id 升序。
// 不修改传入的切片。
func SelectEarliest(candidates []Signature) (Signature, bool) {
	if len(candidates) == 0 {
		return Signature{}, false
	}

	sorted := make([]Signature, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt != sorted[j].CreatedAt {
			return sorted[i].CreatedAt < sorted[j].CreatedAt
		}
		return sorted[i].ID < sorted[j].ID
	})

	return sorted[0], true
}

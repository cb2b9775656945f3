package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Unwrap 统一拆解上游响应信封。
// 上游有时返回 {data: X}，有时返回 {data: {data: X}}，也可能直接返回 X；三种形状都得到 X。
func Unwrap(body []byte) (json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	outer, ok := dataField(body)
	if !ok {
		return json.RawMessage(body), nil
	}
	if inner, ok := dataField(outer); ok {
		return inner, nil
	}
	return outer, nil
}

// dataField 当 raw 是包含 "data" 键的对象时返回该键的值
func dataField(raw json.RawMessage) (json.RawMessage, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	data, ok := obj["data"]
	if !ok {
		return nil, false
	}
	return bytes.TrimSpace(data), true
}

// isNull 缺失或为 null 的载荷
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// decodeOne 解码单个实体，载荷为空时返回 nil
func decodeOne[T any](body []byte) (*T, error) {
	payload, err := Unwrap(body)
	if err != nil {
		return nil, err
	}
	if isNull(payload) {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &out, nil
}

// decodeList 解码集合，载荷为空时返回空切片
func decodeList[T any](body []byte) ([]T, error) {
	payload, err := Unwrap(body)
	if err != nil {
		return nil, err
	}
	if isNull(payload) {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// serverMessage 从错误响应中取服务端给出的消息，依次尝试 message、data.message、error
func serverMessage(body []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	if msg := stringField(obj, "message"); msg != "" {
		return msg
	}
	if data, ok := obj["data"]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			if msg := stringField(inner, "message"); msg != "" {
				return msg
			}
		}
	}
	return stringField(obj, "error")
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

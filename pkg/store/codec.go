package store

import (
	"context"
	"encoding/json"
)

// EncodeValue serializes a value to the JSON text stored by text-backed adapters.
func EncodeValue(key string, value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", &SerializationError{Op: "encode", Key: key, Err: err}
	}
	return string(raw), nil
}

// DecodeValue parses stored JSON text into maps, slices and scalars.
// JSON null decodes to nil, which callers cannot tell apart from absence.
func DecodeValue(key, raw string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, &SerializationError{Op: "decode", Key: key, Err: err}
	}
	return value, nil
}

// GetAs reads key from svc and converts the result to T through JSON, so that
// backends returning native values and backends returning decoded text agree.
// The boolean is false when the key is absent.
func GetAs[T any](ctx context.Context, svc DataService, key string) (T, bool, error) {
	var out T
	value, err := svc.Get(ctx, key)
	if err != nil {
		return out, false, err
	}
	if value == nil {
		return out, false, nil
	}
	if typed, ok := value.(T); ok {
		return typed, true, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return out, false, &SerializationError{Op: "encode", Key: key, Err: err}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, &SerializationError{Op: "decode", Key: key, Err: err}
	}
	return out, true, nil
}

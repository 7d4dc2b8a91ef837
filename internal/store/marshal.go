package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// marshalValue encodes a result value for the value column. Values that
// cannot be encoded as JSON are stored as their fmt representation.
func marshalValue(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		data, err = json.Marshal(fmt.Sprintf("%v", v))
		if err != nil {
			return sql.NullString{}, fmt.Errorf("marshal value: %w", err)
		}
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalValue(ns sql.NullString) (any, error) {
	if !ns.Valid {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return v, nil
}

func marshalParams(p map[string]string) (string, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(data), nil
}

func unmarshalParams(s string) (map[string]string, error) {
	var p map[string]string
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	if len(p) == 0 {
		return nil, nil
	}
	return p, nil
}

func marshalData(d map[string]any) (sql.NullString, error) {
	if len(d) == 0 {
		return sql.NullString{}, nil
	}
	return marshalValue(d)
}

func unmarshalData(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid {
		return nil, nil
	}
	var d map[string]any
	if err := json.Unmarshal([]byte(ns.String), &d); err != nil {
		return nil, fmt.Errorf("unmarshal log data: %w", err)
	}
	return d, nil
}

package types

import (
	"bytes"
	"encoding/json"
)

// Field is one payload member of a success body.
type Field struct {
	Key   string
	Value any
}

// Member builds a Field.
func Member(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// SuccessEnvelope is the dashboard's success body: {success, message, <key>: payload, ...}.
type SuccessEnvelope struct {
	Message string
	Fields  []Field
}

// MarshalJSON keeps success and message ahead of the payload members, which
// follow in the order given.
func (e SuccessEnvelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"success":true,"message":`)
	msg, err := json.Marshal(e.Message)
	if err != nil {
		return nil, err
	}
	buf.Write(msg)

	for _, field := range e.Fields {
		if field.Key == "" {
			continue
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type APIError struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   *APIError `json:"error,omitempty"`
}

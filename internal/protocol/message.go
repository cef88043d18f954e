// internal/protocol/message.go
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Message is one framed command or notification: an action name plus named fields.
// On the wire it is a flat JSON object whose "action" key names the action.
type Message struct {
	Action string
	Fields map[string]interface{}
}

// New builds a message. kv alternates field names and values.
func New(action string, kv ...interface{}) Message {
	m := Message{Action: action, Fields: make(map[string]interface{}, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		m.Fields[key] = kv[i+1]
	}
	return m
}

// With returns a copy of m with key set to value.
func (m Message) With(key string, value interface{}) Message {
	fields := make(map[string]interface{}, len(m.Fields)+1)
	for k, v := range m.Fields {
		fields[k] = v
	}
	fields[key] = value
	return Message{Action: m.Action, Fields: fields}
}

func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	out[FieldAction] = m.Action
	return json.Marshal(out)
}

// UnmarshalJSON keeps numbers as json.Number so integers round-trip exactly.
func (m *Message) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("message is not an object")
	}
	action, ok := raw[FieldAction].(string)
	if !ok || action == "" {
		return errors.New("message has no action")
	}
	delete(raw, FieldAction)
	m.Action = action
	m.Fields = raw
	return nil
}

// Decode parses one wire frame.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}

// Encode renders m as one wire frame.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// String returns a string field. A missing key or a non-string value reports false.
func (m Message) String(key string) (string, bool) {
	s, ok := m.Fields[key].(string)
	return s, ok
}

// OptionalString returns a string field, "" when absent. A present value of any
// other type reports false.
func (m Message) OptionalString(key string) (string, bool) {
	v, present := m.Fields[key]
	if !present || v == nil {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns an integral field. Numeric strings are accepted.
func (m Message) Int(key string) (int, bool) {
	switch v := m.Fields[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func (m Message) Bool(key string) (bool, bool) {
	b, ok := m.Fields[key].(bool)
	return b, ok
}

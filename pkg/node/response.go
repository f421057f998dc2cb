package node

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Response is a normalized node reply. Exactly one of Data and Error is set.
type Response struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *Error         `json:"error,omitempty"`
}

// Err returns the reply error, or nil for a successful reply.
func (r Response) Err() error {
	if r.Success || r.Error == nil {
		return nil
	}
	return r.Error
}

// Field returns the top-level value stored under key in a successful reply.
func (r Response) Field(key string) (any, bool) {
	if r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[key]
	return v, ok
}

// String returns the string stored under key, or "" when absent or not a string.
func (r Response) String(key string) string {
	v, _ := r.Field(key)
	s, _ := v.(string)
	return s
}

// Map returns the object stored under key.
func (r Response) Map(key string) (map[string]any, bool) {
	v, _ := r.Field(key)
	m, ok := v.(map[string]any)
	return m, ok
}

// replyShape is one of the reply layouts a TRON node answers with.
type replyShape interface {
	isReplyShape()
}

// {"Error": "...", "message": "..."}
type topLevelError struct {
	value   any
	message any
}

// {"code": "SIGERROR", "message": "<hex>"}
type codeError struct {
	code    string
	message any
}

// {"result": {"code": "CONTRACT_VALIDATE_ERROR", "message": "<hex>"}}
type resultCodeError struct {
	code    string
	message any
}

// {"result": {"message": "<hex>"}}
type resultMessage struct {
	message any
}

type success struct{}

func (topLevelError) isReplyShape()   {}
func (codeError) isReplyShape()       {}
func (resultCodeError) isReplyShape() {}
func (resultMessage) isReplyShape()   {}
func (success) isReplyShape()         {}

func classify(raw map[string]any) replyShape {
	result, _ := raw["result"].(map[string]any)
	code, hasCode := raw["code"].(string)
	resultCode, hasResultCode := result["code"].(string)
	resultMsg, hasResultMsg := result["message"]

	switch {
	case raw["Error"] != nil:
		return topLevelError{value: raw["Error"], message: raw["message"]}
	case hasCode && strings.Contains(code, "ERROR"):
		return codeError{code: code, message: raw["message"]}
	case hasResultCode && strings.Contains(resultCode, "ERROR"):
		return resultCodeError{code: resultCode, message: result["message"]}
	case hasResultMsg && resultMsg != nil:
		return resultMessage{message: resultMsg}
	default:
		return success{}
	}
}

// Normalize classifies a raw node reply into a Response.
func Normalize(raw map[string]any) Response {
	var e *Error

	switch s := classify(raw).(type) {
	case topLevelError:
		msg := s.message
		if msg == nil {
			msg = s.value
		}
		e = parseError(KindNodeError, "", msg)
	case codeError:
		e = parseError(s.code, s.code, s.message)
	case resultCodeError:
		e = parseError(s.code, s.code, s.message)
	case resultMessage:
		e = parseError(KindResultError, "", s.message)
	case success:
		if raw == nil {
			raw = map[string]any{}
		}
		return Response{Success: true, Data: raw}
	}

	return Response{Success: false, Error: e}
}

// NormalizeJSON decodes body as a JSON object and normalizes it.
func NormalizeJSON(body []byte) (Response, error) {
	raw, err := decodeReply(body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrNodeUnavailable, err)
	}
	return Normalize(raw), nil
}

// decodeReply decodes a JSON object keeping numbers as json.Number, so that
// sun amounts above 2^53 survive a decode and re-encode. An empty or null
// body yields an empty map.
func decodeReply(body []byte) (map[string]any, error) {
	raw := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return raw, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding reply: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func parseError(kind, code string, message any) *Error {
	msg, rawMsg := ParseMessage(message)
	return &Error{
		Kind:       kind,
		Code:       code,
		Message:    msg,
		RawMessage: rawMsg,
	}
}

// ParseMessage splits a node error message into its human readable part and
// the context in front of it. Hex encoded messages are decoded first, unless
// the decoded bytes are not printable text.
//
//	"CONTRACT_VALIDATE_ERROR: insufficient balance" -> ("insufficient balance", "CONTRACT_VALIDATE_ERROR")
func ParseMessage(message any) (msg, rawMsg string) {
	var text string
	switch v := message.(type) {
	case nil:
	case string:
		text = v
	default:
		text = fmt.Sprint(v)
	}

	if decoded, ok := decodeHexText(text); ok {
		text = decoded
	}

	parts := strings.Split(text, ":")
	last := parts[len(parts)-1]
	return strings.TrimSpace(last), strings.TrimSpace(strings.Join(parts[:len(parts)-1], ":"))
}

func decodeHexText(s string) (string, bool) {
	if s == "" || len(s)%2 != 0 {
		return "", false
	}
	b, err := hex.DecodeString(s)
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	decoded := string(b)
	for _, r := range decoded {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return "", false
		}
	}
	return decoded, true
}

package providers

import (
	"bytes"
	"encoding/json"
)

// DecodeRecord decodes one raw record into T. Null entries and records whose
// shape does not fit T report false, so a single drifted record is skipped
// instead of failing its page.
func DecodeRecord[T any](raw json.RawMessage) (*T, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, false
	}
	return out, true
}

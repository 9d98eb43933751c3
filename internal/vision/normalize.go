package vision

import (
	"encoding/json"
	"strings"
)

// Payload is the fixed-schema wire object the model is asked to produce.
// Pointer fields distinguish a JSON null (or missing key) from a zero value.
type Payload struct {
	IsReceipt bool          `json:"is_receipt"`
	Merchant  *string       `json:"merchant"`
	Date      *string       `json:"date"`
	Total     *json.Number  `json:"total"`
	Tax       *json.Number  `json:"tax"`
	Currency  *string       `json:"currency"`
	Items     []ItemPayload `json:"items"`
	Message   *string       `json:"message"`
}

// ItemPayload mirrors one entry of the schema's items array.
type ItemPayload struct {
	Name     string       `json:"name"`
	Price    *json.Number `json:"price"`
	Quantity *json.Number `json:"quantity"`
}

// Normalize locates the first well-formed JSON object embedded in raw model
// output and parses it into the fixed schema. Model text may wrap the object
// in prose or Markdown code fences; a fence-aware pass runs first, then a
// brace-matching scan over the whole text. Balanced regions that are not
// valid JSON (stray braces in prose) are skipped and the scan resumes at the
// next opening brace. Missing schema keys are backfilled with their
// documented defaults so callers never see an absent key. Returns
// ErrMalformedResponse when no parseable object exists.
func Normalize(raw string) (*Payload, error) {
	if fenced, ok := extractFenced(raw); ok {
		if p, ok := parsePayload(fenced); ok {
			return p, nil
		}
	}

	for scan := raw; ; {
		start := strings.IndexByte(scan, '{')
		if start == -1 {
			return nil, ErrMalformedResponse
		}
		if candidate, ok := balancedObject(scan[start:]); ok {
			if p, ok := parsePayload(candidate); ok {
				return p, nil
			}
		}
		scan = scan[start+1:]
	}
}

func parsePayload(candidate string) (*Payload, bool) {
	var p Payload
	if err := json.Unmarshal([]byte(candidate), &p); err != nil {
		return nil, false
	}
	backfill(&p)
	return &p, true
}

// backfill pins the schema defaults: is_receipt:false, all scalars null,
// items empty. Pointer fields already default to nil; only the items slice
// needs pinning so range loops are safe.
func backfill(p *Payload) {
	if p.Items == nil {
		p.Items = []ItemPayload{}
	}
}

// extractFenced returns the body of the first ```json (or plain ```) fence.
func extractFenced(raw string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(raw, marker)
		if start == -1 {
			continue
		}
		body := raw[start+len(marker):]
		end := strings.Index(body, "```")
		if end == -1 {
			continue
		}
		return strings.TrimSpace(body[:end]), true
	}
	return "", false
}

// balancedObject returns the balanced {...} region opening at raw[0],
// tracking string literals and escapes so braces inside values do not break
// the match.
func balancedObject(raw string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return raw[:i+1], true
			}
		}
	}
	return "", false
}

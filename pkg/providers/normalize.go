package providers

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/loopmsg/wabridge/pkg/types"
)

// NormalizeEmailMessage converts a raw Gmail message into the stable shape
// exposed to clients, tolerating missing optional fields
func NormalizeEmailMessage(raw map[string]any) types.EmailMessage {
	msg := types.EmailMessage{
		Id:       getString(raw, "id"),
		ThreadId: getString(raw, "threadId"),
		Snippet:  getString(raw, "snippet"),
		LabelIds: getStringSlice(raw, "labelIds"),
		Body:     ExtractBody(raw),
		IsRead:   true,
	}

	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			msg.IsRead = false
			break
		}
	}

	var from, dateHeader string
	if payload, ok := raw["payload"].(map[string]any); ok {
		if hdrs, ok := payload["headers"].([]any); ok {
			for _, h := range hdrs {
				hdr, ok := h.(map[string]any)
				if !ok {
					continue
				}
				value := getString(hdr, "value")
				switch getString(hdr, "name") {
				case "From":
					from = value
				case "To":
					msg.To = value
				case "Subject":
					msg.Subject = value
				case "Date":
					dateHeader = value
				}
			}
		}
	}

	msg.Sender, msg.SenderEmail = ParseSender(from)
	msg.Date = normalizeEmailDate(dateHeader, getString(raw, "internalDate"))

	return msg
}

// ExtractBody extracts the best available text body from a Gmail message:
// the payload's own body first, then a text/plain part, then text/html
// converted to plain text, then text/plain inside one level of nested
// multipart containers. Missing bodies yield an empty string, never an
// error.
func ExtractBody(raw map[string]any) string {
	payload, ok := raw["payload"].(map[string]any)
	if !ok {
		return ""
	}

	if body, ok := payload["body"].(map[string]any); ok {
		if decoded := decodeBodyData(body); decoded != "" {
			return decoded
		}
	}

	parts, _ := payload["parts"].([]any)

	if text := findPartBody(parts, "text/plain"); text != "" {
		return text
	}

	if html := findPartBody(parts, "text/html"); html != "" {
		return StripHTML(html)
	}

	// One level deeper: multipart containers holding the text/plain part
	for _, p := range parts {
		part, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if !strings.HasPrefix(getString(part, "mimeType"), "multipart/") {
			continue
		}
		nested, _ := part["parts"].([]any)
		if text := findPartBody(nested, "text/plain"); text != "" {
			return text
		}
	}

	return ""
}

// findPartBody returns the decoded body of the first part with the given
// MIME type and populated data
func findPartBody(parts []any, mimeType string) string {
	for _, p := range parts {
		part, ok := p.(map[string]any)
		if !ok {
			continue
		}
		if getString(part, "mimeType") != mimeType {
			continue
		}
		if body, ok := part["body"].(map[string]any); ok {
			if decoded := decodeBodyData(body); decoded != "" {
				return decoded
			}
		}
	}
	return ""
}

// decodeBodyData decodes the base64url-encoded body data of a message part.
// Gmail uses URL-safe base64, often without padding.
func decodeBodyData(body map[string]any) string {
	data := getString(body, "data")
	if data == "" {
		return ""
	}

	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(data)
		if err != nil {
			// Pad to a multiple of 4 and try once more
			padded := data
			switch len(data) % 4 {
			case 2:
				padded += "=="
			case 3:
				padded += "="
			}
			decoded, _ = base64.URLEncoding.DecodeString(padded)
		}
	}

	return string(decoded)
}

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*?>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTML removes tags from an HTML body and collapses runs of whitespace
// to a single space
func StripHTML(html string) string {
	text := htmlTagRegex.ReplaceAllString(html, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ParseSender splits a From header into display name and address. For
// "Jane <jane@example.com>" the name (quotes stripped) and the bracketed
// address are returned; an empty name falls back to the address; a header
// without brackets is returned as both.
func ParseSender(from string) (sender, senderEmail string) {
	open := strings.Index(from, "<")
	end := strings.LastIndex(from, ">")
	if open < 0 || end < open {
		return from, from
	}

	senderEmail = strings.TrimSpace(from[open+1 : end])
	sender = strings.TrimSpace(strings.Trim(strings.TrimSpace(from[:open]), `"'`))
	if sender == "" {
		sender = senderEmail
	}
	return sender, senderEmail
}

// emailDateFormats are the header formats seen in practice
var emailDateFormats = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
}

// normalizeEmailDate prefers the parsed Date header, falling back to the
// provider's internalDate (epoch milliseconds as a string)
func normalizeEmailDate(dateHeader, internalDate string) string {
	for _, format := range emailDateFormats {
		if t, err := time.Parse(format, dateHeader); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	if ms, err := strconv.ParseInt(internalDate, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC().Format(time.RFC3339)
	}
	return ""
}

// getString extracts a string value from a map
func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getBool extracts a bool value from a map
func getBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

// getStringSlice extracts a []string value from a map
func getStringSlice(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

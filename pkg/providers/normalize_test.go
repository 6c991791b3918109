package providers

import (
	"testing"
)

func TestExtractBody_DirectPayloadBody(t *testing.T) {
	raw := map[string]any{
		"payload": map[string]any{
			"mimeType": "text/plain",
			"body": map[string]any{
				"data": "RGlyZWN0IGJvZHkgdGV4dA", // "Direct body text" without padding
			},
		},
	}

	result := ExtractBody(raw)
	if result != "Direct body text" {
		t.Errorf("Expected 'Direct body text', got '%s'", result)
	}
}

func TestExtractBody_PlainTextPartPreferred(t *testing.T) {
	raw := map[string]any{
		"payload": map[string]any{
			"mimeType": "multipart/alternative",
			"parts": []any{
				map[string]any{
					"mimeType": "text/html",
					"body": map[string]any{
						"data": "PGh0bWw-PGJvZHk-T25seSBIVE1MPC9ib2R5PjwvaHRtbD4", // "<html><body>Only HTML</body></html>"
					},
				},
				map[string]any{
					"mimeType": "text/plain",
					"body": map[string]any{
						"data": "UGxhaW4gdGV4dCBib2R5", // "Plain text body"
					},
				},
			},
		},
	}

	result := ExtractBody(raw)
	if result != "Plain text body" {
		t.Errorf("Expected 'Plain text body', got '%s'", result)
	}
}

func TestExtractBody_HTMLFallbackStripsTags(t *testing.T) {
	raw := map[string]any{
		"payload": map[string]any{
			"mimeType": "multipart/alternative",
			"parts": []any{
				map[string]any{
					"mimeType": "text/html",
					"body": map[string]any{
						"data": "PHA-SGkgPGI-dGhlcmU8L2I-PC9wPg", // "<p>Hi <b>there</b></p>"
					},
				},
			},
		},
	}

	result := ExtractBody(raw)
	if result != "Hi there" {
		t.Errorf("Expected 'Hi there', got '%s'", result)
	}
}

func TestExtractBody_NestedMultipart(t *testing.T) {
	raw := map[string]any{
		"payload": map[string]any{
			"mimeType": "multipart/mixed",
			"parts": []any{
				map[string]any{
					"mimeType": "application/pdf",
					"filename": "attachment.pdf",
					"body": map[string]any{
						"attachmentId": "some-id",
					},
				},
				map[string]any{
					"mimeType": "multipart/alternative",
					"parts": []any{
						map[string]any{
							"mimeType": "text/plain",
							"body": map[string]any{
								"data": "TmVzdGVkIHBsYWluIHRleHQ", // "Nested plain text"
							},
						},
					},
				},
			},
		},
	}

	result := ExtractBody(raw)
	if result != "Nested plain text" {
		t.Errorf("Expected 'Nested plain text', got '%s'", result)
	}
}

func TestExtractBody_MissingBody(t *testing.T) {
	raw := map[string]any{
		"payload": map[string]any{
			"mimeType": "multipart/mixed",
			"parts": []any{
				map[string]any{
					"mimeType": "application/pdf",
					"body":     map[string]any{"attachmentId": "x"},
				},
			},
		},
	}

	if result := ExtractBody(raw); result != "" {
		t.Errorf("Expected empty string for message without text body, got '%s'", result)
	}

	if result := ExtractBody(map[string]any{}); result != "" {
		t.Errorf("Expected empty string for message without payload, got '%s'", result)
	}
}

func TestDecodeBodyData_PaddingVariants(t *testing.T) {
	cases := map[string]string{
		"SGVsbG8gV29ybGQh":         "Hello World!",     // no padding needed
		"RGlyZWN0IGJvZHkgdGV4dA":   "Direct body text", // stripped padding
		"RGlyZWN0IGJvZHkgdGV4dA==": "Direct body text", // explicit padding
	}

	for data, want := range cases {
		got := decodeBodyData(map[string]any{"data": data})
		if got != want {
			t.Errorf("decodeBodyData(%q) = %q, want %q", data, got, want)
		}
	}
}

func TestParseSender(t *testing.T) {
	cases := []struct {
		from        string
		sender      string
		senderEmail string
	}{
		{`"Jane Doe" <jane@example.com>`, "Jane Doe", "jane@example.com"},
		{`Jane Doe <jane@example.com>`, "Jane Doe", "jane@example.com"},
		{`<jane@example.com>`, "jane@example.com", "jane@example.com"},
		{`noreply@example.com`, "noreply@example.com", "noreply@example.com"},
	}

	for _, tc := range cases {
		sender, senderEmail := ParseSender(tc.from)
		if sender != tc.sender || senderEmail != tc.senderEmail {
			t.Errorf("ParseSender(%q) = (%q, %q), want (%q, %q)",
				tc.from, sender, senderEmail, tc.sender, tc.senderEmail)
		}
	}
}

func TestNormalizeEmailMessage(t *testing.T) {
	raw := map[string]any{
		"id":           "msg-1",
		"threadId":     "thread-1",
		"snippet":      "a snippet",
		"labelIds":     []any{"INBOX", "UNREAD"},
		"internalDate": "1709290800000",
		"payload": map[string]any{
			"headers": []any{
				map[string]any{"name": "From", "value": `"Jane Doe" <jane@example.com>`},
				map[string]any{"name": "To", "value": "me@example.com"},
				map[string]any{"name": "Subject", "value": "Hello"},
				map[string]any{"name": "Date", "value": "Fri, 01 Mar 2024 12:00:00 +0000"},
			},
			"body": map[string]any{
				"data": "SGVsbG8gV29ybGQh",
			},
		},
	}

	msg := NormalizeEmailMessage(raw)

	if msg.Id != "msg-1" || msg.ThreadId != "thread-1" {
		t.Errorf("unexpected ids: %+v", msg)
	}
	if msg.Sender != "Jane Doe" || msg.SenderEmail != "jane@example.com" {
		t.Errorf("unexpected sender: %q / %q", msg.Sender, msg.SenderEmail)
	}
	if msg.Subject != "Hello" || msg.To != "me@example.com" {
		t.Errorf("unexpected headers: %+v", msg)
	}
	if msg.Body != "Hello World!" {
		t.Errorf("unexpected body: %q", msg.Body)
	}
	if msg.IsRead {
		t.Error("message with UNREAD label should not be read")
	}
	if msg.Date != "2024-03-01T12:00:00Z" {
		t.Errorf("unexpected date: %q", msg.Date)
	}
}

func TestNormalizeEmailMessage_DateFallsBackToInternalDate(t *testing.T) {
	raw := map[string]any{
		"id":           "msg-2",
		"internalDate": "1709290800000", // 2024-03-01T11:00:00Z
		"payload": map[string]any{
			"headers": []any{
				map[string]any{"name": "Date", "value": "not a date"},
			},
		},
	}

	msg := NormalizeEmailMessage(raw)
	if msg.Date != "2024-03-01T11:00:00Z" {
		t.Errorf("expected internalDate fallback, got %q", msg.Date)
	}
}

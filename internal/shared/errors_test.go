package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

func TestClassify(t *testing.T) {
	var syntaxErr *json.SyntaxError
	badJSON := json.Unmarshal([]byte("{"), &struct{}{})
	if !errors.As(badJSON, &syntaxErr) {
		t.Fatalf("expected json syntax error, got %T", badJSON)
	}

	tc := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "wrapped network sentinel", err: fmt.Errorf("%w: status 500", ErrNetwork), want: KindNetwork},
		{name: "deadline exceeded", err: fmt.Errorf("search: %w", context.DeadlineExceeded), want: KindNetwork},
		{name: "canceled", err: context.Canceled, want: KindNetwork},
		{name: "decoding cut short by deadline", err: fmt.Errorf("%w: %w", ErrDecoding, context.DeadlineExceeded), want: KindNetwork},
		{name: "url error", err: &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("refused")}, want: KindNetwork},
		{name: "wrapped decoding sentinel", err: fmt.Errorf("%w: unexpected EOF", ErrDecoding), want: KindDecoding},
		{name: "json syntax error", err: badJSON, want: KindDecoding},
		{name: "anything else", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorKindMessage(t *testing.T) {
	seen := map[string]ErrorKind{}
	for _, k := range []ErrorKind{KindNetwork, KindDecoding, KindUnknown} {
		msg := k.Message()
		if msg == "" {
			t.Errorf("kind %v has empty message", k)
		}
		if other, ok := seen[msg]; ok {
			t.Errorf("kinds %v and %v share message %q", k, other, msg)
		}
		seen[msg] = k
	}
}

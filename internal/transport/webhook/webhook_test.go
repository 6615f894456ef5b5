package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"diffreport/internal/transport"
	logx "diffreport/pkg/logx"
)

func TestNewValidatesURL(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}, logx.Logger{}); !errors.Is(err, transport.ErrUnavailable) {
		t.Fatalf("empty url err=%v want ErrUnavailable", err)
	}
	if _, err := New(Config{URL: "ftp://example.com/hook"}, logx.Logger{}); err == nil {
		t.Fatalf("expected scheme error")
	}
}

func TestSendPostsJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		field string
		want  string
	}{
		{"default field", "", "text"},
		{"discord field", "content", "content"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got map[string]string
			var ctype string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctype = r.Header.Get("Content-Type")
				if r.Method != http.MethodPost {
					t.Errorf("method=%s want POST", r.Method)
				}
				_ = json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			s, err := New(Config{URL: srv.URL, Field: tc.field}, logx.Logger{})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if err := s.Send(context.Background(), "CHANGED: job\n+new"); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if ctype != "application/json" {
				t.Fatalf("content-type=%q", ctype)
			}
			if got[tc.want] != "CHANGED: job\n+new" || len(got) != 1 {
				t.Fatalf("payload=%v want only %q", got, tc.want)
			}
		})
	}
}

func TestSendNon2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	s, err := New(Config{URL: srv.URL}, logx.Logger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = s.Send(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "status 400") || !strings.Contains(err.Error(), "invalid_payload") {
		t.Fatalf("err=%v want status 400 with body", err)
	}
}

func TestSendCancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s, err := New(Config{URL: srv.URL}, logx.Logger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
}

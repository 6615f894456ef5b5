package transport

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMultiStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var got []string
	ok := SenderFunc(func(_ context.Context, text string) error {
		got = append(got, text)
		return nil
	})
	bad := SenderFunc(func(context.Context, string) error { return boom })

	err := Multi{ok, bad, ok}.Send(context.Background(), "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want boom", err)
	}
	if !strings.Contains(err.Error(), "destination 2") {
		t.Fatalf("err=%q want destination index", err)
	}
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got=%v want one delivery", got)
	}
}

func TestMultiSingleErrorIsUnwrapped(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	err := Multi{SenderFunc(func(context.Context, string) error { return boom })}.Send(context.Background(), "x")
	if err != boom {
		t.Fatalf("err=%v want boom", err)
	}
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	err := Unavailable("matrix", "no client")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err=%v does not wrap ErrUnavailable", err)
	}
	if !strings.Contains(err.Error(), "matrix: no client") {
		t.Fatalf("err=%q", err)
	}
}

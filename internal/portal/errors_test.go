package portal

import (
	"errors"
	"reflect"
	"testing"
)

func TestFlattenMessagesNestedPayload(t *testing.T) {
	body := []byte(`{
		"payouts": [
			{"amount": ["Amount must be greater than 0"]},
			{"currency": ["Currency is required", "Currency is not supported"]}
		],
		"title": ["A campaign with this title already exists"]
	}`)

	got := flattenMessages(body)
	want := []string{
		"Amount must be greater than 0",
		"Currency is required",
		"Currency is not supported",
		"A campaign with this title already exists",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
}

func TestFlattenMessagesDetailObject(t *testing.T) {
	got := flattenMessages([]byte(`{"detail": "Not found."}`))
	if len(got) != 1 || got[0] != "Not found." {
		t.Fatalf("messages = %v", got)
	}
}

func TestFlattenMessagesNonJSONBody(t *testing.T) {
	got := flattenMessages([]byte("bad gateway"))
	if len(got) != 1 || got[0] != "bad gateway" {
		t.Fatalf("messages = %v", got)
	}
	if got := flattenMessages(nil); got != nil {
		t.Fatalf("empty body messages = %v, want nil", got)
	}
}

func TestFlattenMessagesIgnoresNonStringLeaves(t *testing.T) {
	got := flattenMessages([]byte(`{"code": 400, "ok": false, "detail": "bad request"}`))
	if len(got) != 1 || got[0] != "bad request" {
		t.Fatalf("messages = %v", got)
	}
}

func TestIsKind(t *testing.T) {
	err := &Error{Kind: KindNotFound, Status: 404}
	if !IsKind(err, KindNotFound) {
		t.Fatal("IsKind(not_found) = false")
	}
	if IsKind(err, KindAuth) {
		t.Fatal("IsKind(auth) = true for not_found error")
	}
	if IsKind(errors.New("plain"), KindServer) {
		t.Fatal("IsKind should be false for untyped errors")
	}
}

func TestErrorMessageFallback(t *testing.T) {
	err := &Error{Kind: KindServer, Status: 502}
	if got := err.Message("Failed to fetch campaigns"); got != "Failed to fetch campaigns" {
		t.Fatalf("message = %q", got)
	}
	err.Messages = []string{"upstream exploded"}
	if got := err.Message("fallback"); got != "upstream exploded" {
		t.Fatalf("message = %q", got)
	}
}

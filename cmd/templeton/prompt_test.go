package main

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakePrompter struct {
	answers map[string]string
	asked   []string
	err     error
}

func (f *fakePrompter) Input(_ context.Context, message, _ string) (string, error) {
	f.asked = append(f.asked, message)
	if f.err != nil {
		return "", f.err
	}
	return f.answers[message], nil
}

func TestPromptMissing(t *testing.T) {
	p := &fakePrompter{answers: map[string]string{"name:": "Ada", "city:": "London"}}
	data := map[string]any{"greeting": "Hello"}

	err := promptMissing(context.Background(), p, []string{"greeting", "name", "city"}, data)
	if err != nil {
		t.Fatalf("promptMissing() error: %v", err)
	}
	if diff := cmp.Diff([]string{"name:", "city:"}, p.asked); diff != "" {
		t.Errorf("asked mismatch (-want +got):\n%s", diff)
	}
	want := map[string]any{"greeting": "Hello", "name": "Ada", "city": "London"}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestPromptMissing_Aborted(t *testing.T) {
	p := &fakePrompter{err: ErrAborted}
	err := promptMissing(context.Background(), p, []string{"name"}, map[string]any{})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("promptMissing() error = %v, want ErrAborted", err)
	}
}

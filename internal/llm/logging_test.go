package llm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/abhisek/studybuddy/internal/logger"
)

func TestWithLogging_RecordsCompletion(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Fragments: []string{"ab", "cd"}})
	p := WithLogging(mock, log)

	ctx := WithPurpose(context.Background(), "generate")
	text, err := Collect(p.Stream(ctx, Request{Model: "gemini-2.0-flash", Parts: []Part{TextPart("hi")}}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "abcd" {
		t.Fatalf("unexpected text %q", text)
	}

	out := buf.String()
	for _, want := range []string{"llm request", "llm request completed", `"purpose":"generate"`, `"fragments":2`, `"bytes":4`, `"model":"gemini-2.0-flash"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestWithLogging_RecordsFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, zapcore.InfoLevel)
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")})
	p := WithLogging(mock, log)

	if _, err := Collect(p.Stream(context.Background(), Request{})); err == nil {
		t.Fatal("expected error")
	}
	out := buf.String()
	if !strings.Contains(out, "llm request failed") || !strings.Contains(out, "boom") {
		t.Fatalf("expected failure log, got:\n%s", out)
	}
	if strings.Contains(out, `"msg":"llm request"`) {
		t.Fatalf("debug line leaked at info level:\n%s", out)
	}
}

func TestWithLogging_NilLogger(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Fragments: []string{"x"}}), nil)
	if text, err := Collect(p.Stream(context.Background(), Request{})); err != nil || text != "x" {
		t.Fatalf("unexpected result %q, %v", text, err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected model id passthrough, got %q", p.ModelID())
	}
}

package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result    EmbeddingResult
	err       error
	got       string
	healthErr error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

func (s *stubEmbedder) HealthCheck(_ context.Context) error { return s.healthErr }

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "peraturan pajak")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: peraturan pajak" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	emb := NewInstructionEmbedder(&stubEmbedder{err: innerErr}, "query: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestInstructionEmbedder_HealthCheckForwards(t *testing.T) {
	healthErr := errors.New("unreachable")
	emb := NewInstructionEmbedder(&stubEmbedder{healthErr: healthErr}, "")

	if err := emb.HealthCheck(context.Background()); !errors.Is(err, healthErr) {
		t.Errorf("expected forwarded health error, got %v", err)
	}
}

func TestDuplicateIDError(t *testing.T) {
	err := NewDuplicateID(42)
	if !errors.Is(err, ErrDuplicateDocumentID) {
		t.Fatal("expected errors.Is to match ErrDuplicateDocumentID")
	}
	if err.Error() != "duplicate document id: 42" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrEncoderTimeout, true},
		{ErrEmbeddingProviderError, true},
		{ErrIndexNotReady, true},
		{ErrConfiguration, false},
		{errors.New("other"), false},
	}
	for _, tc := range tests {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

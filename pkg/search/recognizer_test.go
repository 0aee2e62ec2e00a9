package search

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStubRecognizer(t *testing.T) {
	stub := StubRecognizer{Product: "iPhone 15", Delay: 20 * time.Millisecond}

	start := time.Now()
	got, err := stub.Recognize(context.Background(), Image{Filename: "photo.jpg"})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if got != "iPhone 15" {
		t.Errorf("Recognize() = %q, want %q", got, "iPhone 15")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Recognize returned after %v, want >= 20ms", elapsed)
	}
}

func TestStubRecognizer_ContextCancelled(t *testing.T) {
	stub := StubRecognizer{Product: "iPhone 15", Delay: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stub.Recognize(ctx, Image{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Recognize() error = %v, want context.Canceled", err)
	}
}

func TestNewStubRecognizer(t *testing.T) {
	stub := NewStubRecognizer()
	if stub.Product != DefaultStubProduct {
		t.Errorf("Product = %q, want %q", stub.Product, DefaultStubProduct)
	}
	if stub.Delay != DefaultStubDelay {
		t.Errorf("Delay = %v, want %v", stub.Delay, DefaultStubDelay)
	}
}

package search

import (
	"context"
	"time"
)

// Stub recognition defaults.
const (
	DefaultStubProduct = "iPhone 15"
	DefaultStubDelay   = 1 * time.Second
)

// StubRecognizer stands in for image recognition: after Delay it reports
// Product for every image.
type StubRecognizer struct {
	Product string
	Delay   time.Duration
}

// NewStubRecognizer returns the default stub.
func NewStubRecognizer() StubRecognizer {
	return StubRecognizer{Product: DefaultStubProduct, Delay: DefaultStubDelay}
}

// Recognize implements Recognizer.
func (s StubRecognizer) Recognize(ctx context.Context, _ Image) (string, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return s.Product, nil
}

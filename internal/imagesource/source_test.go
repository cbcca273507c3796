package imagesource

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsAreDistinctAndWrappable(t *testing.T) {
	wrapped := fmt.Errorf("render failed: %w", ErrSourceUnavailable)
	if !errors.Is(wrapped, ErrSourceUnavailable) {
		t.Fatal("wrapped ErrSourceUnavailable should satisfy errors.Is")
	}
	if errors.Is(wrapped, ErrSourceFatal) {
		t.Fatal("ErrSourceUnavailable must not match ErrSourceFatal")
	}

	fatal := fmt.Errorf("render failed: %w", ErrSourceFatal)
	if !errors.Is(fatal, ErrSourceFatal) {
		t.Fatal("wrapped ErrSourceFatal should satisfy errors.Is")
	}
	if errors.Is(fatal, ErrSourceUnavailable) {
		t.Fatal("ErrSourceFatal must not match ErrSourceUnavailable")
	}
}

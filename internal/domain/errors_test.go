package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrors_AreDistinctAndUsableWithErrorsIs(t *testing.T) {
	all := []error{
		ErrInvalidConfig,
		ErrDecode,
		ErrNotFound,
		ErrAccessDenied,
		ErrQuotaExceeded,
		ErrInvalidAPIKey,
		ErrTokenStoreNotReady,
	}
	for i, a := range all {
		if a == nil {
			t.Fatalf("sentinel %d must not be nil", i)
		}
		if a.Error() == "" {
			t.Fatalf("sentinel %d message should not be empty", i)
		}
		for j, b := range all {
			if i != j && a == b {
				t.Fatalf("sentinels %d and %d must be distinct", i, j)
			}
		}
	}

	wrapped := fmt.Errorf("page 3: %w", ErrDecode)
	if !errors.Is(wrapped, ErrDecode) {
		t.Fatalf("expected errors.Is to match ErrDecode through wrapping")
	}

	joined := errors.Join(errors.New("context"), ErrQuotaExceeded)
	if !errors.Is(joined, ErrQuotaExceeded) {
		t.Fatalf("expected errors.Is to match ErrQuotaExceeded through join")
	}
}

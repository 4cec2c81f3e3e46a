package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeInvalidTitle, "title contains %q", "#"), `INVALID_TITLE: title contains "#"`},
		{"wrap", Wrap(ErrCodeNetwork, errors.New("connection reset"), "fetch links of %q", "Graph theory"),
			`NETWORK_ERROR: fetch links of "Graph theory": connection reset`},
		{"wrap nil cause", Wrap(ErrCodeArticleNotFound, nil, "no article %q", "Xyzzy"), `ARTICLE_NOT_FOUND: no article "Xyzzy"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := Wrap(ErrCodeTimeout, cause, "request to en.wikipedia.org")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want cause", errors.Unwrap(err))
	}
	if !errors.Is(fmt.Errorf("expand: %w", err), cause) {
		t.Error("errors.Is should see the cause through fmt wrapping")
	}
}

func TestCodeLookup(t *testing.T) {
	notFound := New(ErrCodeArticleNotFound, "no article %q", "Xyzzy")
	tests := []struct {
		name     string
		err      error
		wantCode Code
		wantMsg  string
	}{
		{"coded", notFound, ErrCodeArticleNotFound, `no article "Xyzzy"`},
		{"fmt wrapped", fmt.Errorf("expand: %w", notFound), ErrCodeArticleNotFound, `no article "Xyzzy"`},
		{"outermost wins", Wrap(ErrCodeTimeout, New(ErrCodeNetwork, "reset"), "fetch"), ErrCodeTimeout, "fetch"},
		{"plain", errors.New("boom"), "", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
			}
			if tt.wantCode != "" && !Is(tt.err, tt.wantCode) {
				t.Errorf("Is(%q) = false", tt.wantCode)
			}
			if got := UserMessage(tt.err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
		})
	}

	if GetCode(nil) != "" || Is(nil, ErrCodeNetwork) {
		t.Error("nil error should carry no code")
	}
}

func TestRateLimitedError(t *testing.T) {
	t.Run("with retry after", func(t *testing.T) {
		err := &RateLimitedError{RetryAfter: 60}
		expected := "rate limited: retry after 60 seconds"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without retry after", func(t *testing.T) {
		err := &RateLimitedError{}
		expected := "rate limited"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("code method", func(t *testing.T) {
		err := &RateLimitedError{}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeRateLimited)
		}
	})
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"network", New(ErrCodeNetwork, "reset"), true},
		{"timeout", New(ErrCodeTimeout, "deadline"), true},
		{"circuit open", New(ErrCodeCircuitOpen, "open"), true},
		{"rate limited", &RateLimitedError{RetryAfter: 5}, true},
		{"wrapped rate limited", Wrap(ErrCodeInternal, &RateLimitedError{}, "outer"), true},
		{"not found", New(ErrCodeArticleNotFound, "missing"), false},
		{"invalid title", New(ErrCodeInvalidTitle, "empty"), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.expected {
				t.Errorf("Transient() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCodeRateLimited(t *testing.T) {
	err := Wrap(ErrCodeArticleNotFound, nil, "x")
	if GetCode(err) != ErrCodeArticleNotFound {
		t.Errorf("GetCode() = %v", GetCode(err))
	}

	rl := &RateLimitedError{RetryAfter: 3}
	if GetCode(rl) != ErrCodeRateLimited {
		t.Errorf("GetCode(RateLimitedError) = %v, want %v", GetCode(rl), ErrCodeRateLimited)
	}
	if !Is(rl, ErrCodeRateLimited) {
		t.Error("Is(RateLimitedError, RATE_LIMITED) = false")
	}
	if Is(errors.New("plain"), "") {
		t.Error("Is with empty code should be false")
	}
}

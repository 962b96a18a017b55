package resilience

import (
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"syscall"
	"testing"
)

func TestIsTransientExplicit(t *testing.T) {
	if !IsTransient(NewTransientError(errors.New("portal overloaded"), 503)) {
		t.Error("expected TransientError to be transient")
	}
}

func TestIsTransientThroughWrapChain(t *testing.T) {
	inner := NewTransientError(errors.New("rate limited"), 429)
	wrapped := fmt.Errorf("download failed: %w", inner)
	if !IsTransient(wrapped) {
		t.Error("expected wrapped TransientError to be transient")
	}
}

func TestIsTransientNil(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil error must not be transient")
	}
}

func TestIsTransientPlainError(t *testing.T) {
	if IsTransient(errors.New("unknown statement layout")) {
		t.Error("plain error must not be transient")
	}
}

func TestIsTransientSyscallErrors(t *testing.T) {
	for _, errno := range []syscall.Errno{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED} {
		err := fmt.Errorf("dial tcp: %w", errno)
		if !IsTransient(err) {
			t.Errorf("expected %v to be transient", errno)
		}
	}
}

func TestIsTransientNetTimeout(t *testing.T) {
	err := &net.DNSError{IsTimeout: true, Err: "timeout"}
	if !IsTransient(err) {
		t.Error("network timeout should be transient")
	}
}

func TestIsTransientMessagePatterns(t *testing.T) {
	for _, msg := range []string{
		"connection reset by peer",
		"broken pipe",
		"TLS handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if !IsTransient(errors.New(msg)) {
			t.Errorf("expected %q to be transient", msg)
		}
	}
}

func TestIsTransientFTPReplies(t *testing.T) {
	busy := &textproto.Error{Code: 450, Msg: "file busy"}
	if !IsTransient(fmt.Errorf("retrieve: %w", busy)) {
		t.Error("450 reply should be transient")
	}

	missing := &textproto.Error{Code: 550, Msg: "no such file"}
	if IsTransient(fmt.Errorf("retrieve: %w", missing)) {
		t.Error("550 reply must not be transient")
	}

	// A permanent reply whose message resembles a network failure must still
	// fail fast.
	reset := &textproto.Error{Code: 551, Msg: "connection reset by peer"}
	if IsTransient(reset) {
		t.Error("551 reply must not fall through to message heuristics")
	}
}

func TestIsTransientFTPCode(t *testing.T) {
	for _, code := range []int{421, 425, 426, 450, 451, 452} {
		if !IsTransientFTPCode(code) {
			t.Errorf("expected FTP %d to be transient", code)
		}
	}
	for _, code := range []int{200, 226, 331, 530, 550, 553} {
		if IsTransientFTPCode(code) {
			t.Errorf("expected FTP %d to be permanent", code)
		}
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("expected HTTP %d to be transient", code)
		}
	}
	for _, code := range []int{200, 201, 301, 400, 401, 403, 404, 422} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("expected HTTP %d to be permanent", code)
		}
	}
}

func TestTransientErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	te := NewTransientError(inner, 500)

	if !errors.Is(te, inner) {
		t.Error("TransientError should unwrap to the inner error")
	}
	if te.StatusCode != 500 {
		t.Errorf("expected StatusCode 500, got %d", te.StatusCode)
	}
	if te.Error() != "root cause" {
		t.Errorf("expected message passthrough, got %q", te.Error())
	}
}

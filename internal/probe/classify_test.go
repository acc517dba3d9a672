package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"nxdomain", &url.Error{Op: "Get", URL: "http://nope.invalid", Err: &net.DNSError{Name: "nope.invalid", IsNotFound: true}}, ReasonDNSNotFound},
		{"dns timeout", &net.DNSError{Name: "slow.example", IsTimeout: true}, ReasonTimeout},
		{"dns servfail", &net.DNSError{Name: "x.example", IsTemporary: true}, ReasonDNSError},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), ReasonTimeout},
		{"refused", &url.Error{Op: "Get", URL: "http://127.0.0.1:1", Err: refused}, ReasonConnectionRefused},
		{"other", errors.New("connection reset by peer"), ReasonTransportError},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Fatalf("%s: Classify=%q want %q", c.name, got, c.want)
		}
	}
}

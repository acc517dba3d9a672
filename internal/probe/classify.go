package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"
)

// Reasons attached to unreachable outcomes. They only end up in logs.
const (
	ReasonDNSNotFound       = "dns_not_found"
	ReasonDNSError          = "dns_error"
	ReasonTimeout           = "timeout"
	ReasonConnectionRefused = "connection_refused"
	ReasonTLSError          = "tls_error"
	ReasonInvalidRequest    = "invalid_request"
	ReasonTransportError    = "transport_error"
)

// Classify names the transport failure behind err.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var de *net.DNSError
	if errors.As(err, &de) {
		if de.IsNotFound {
			return ReasonDNSNotFound
		}
		if de.IsTimeout {
			return ReasonTimeout
		}
		return ReasonDNSError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ReasonConnectionRefused
	}

	var (
		certErr    *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
	)
	if errors.As(err, &certErr) || errors.As(err, &unknownCA) || errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) || errors.As(err, &recordErr) {
		return ReasonTLSError
	}

	return ReasonTransportError
}

// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly explanations for failed HTTP requests.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	xerrors "xdrquery/cli/internal/errors"
)

// Class is a coarse category of request failure.
type Class int

const (
	ClassUnknown Class = iota
	ClassTimeout
	ClassDNS
	ClassRefused
	ClassTLS
	ClassServer
)

// Classify inspects err and its chain.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassUnknown
	case isTimeoutError(err):
		return ClassTimeout
	case isDNSError(err):
		return ClassDNS
	case isConnectionRefusedError(err):
		return ClassRefused
	case isSSLError(err):
		return ClassTLS
	case isServerError(err):
		return ClassServer
	}
	return ClassUnknown
}

// FormatNetworkError prints a troubleshooting message for err and returns it wrapped.
// Errors that are neither transport failures nor server errors are returned unchanged
// without printing anything.
func FormatNetworkError(err error, context string) error {
	if err == nil {
		return nil
	}
	if !xerrors.Is(err, xerrors.Transport) && Classify(err) != ClassServer {
		return err
	}
	for _, line := range Explain(err, context) {
		pterm.Println(line)
	}
	return fmt.Errorf("network error: %w", err)
}

// Explain returns the lines FormatNetworkError prints.
func Explain(err error, context string) []string {
	host := hostOf(err)
	switch Classify(err) {
	case ClassTimeout:
		return []string{
			fmt.Sprintf("⏱️  Connection timeout while %s", context),
			"",
			"The server took too long to respond. This could mean:",
			"  • Slow internet connection",
			"  • Server is under heavy load",
			"  • Network firewall is blocking the connection",
			"",
		}
	case ClassDNS:
		return []string{
			fmt.Sprintf("🌐 Cannot resolve server address while %s", context),
			"",
			fmt.Sprintf("Unable to look up %s. Please check:", host),
			"  • Your internet connection is working",
			"  • The environment configuration names the right hosts",
			"",
		}
	case ClassRefused:
		return []string{
			fmt.Sprintf("🚫 Connection refused while %s", context),
			"",
			fmt.Sprintf("%s is not accepting connections. Check the environment configuration", host),
			"or try again later.",
			"",
		}
	case ClassTLS:
		return []string{
			fmt.Sprintf("🔒 Secure connection failed while %s", context),
			"",
			"Certificate verification is always on. This could mean:",
			"  • The server certificate is not trusted by this system",
			"  • A network proxy is intercepting HTTPS",
			"  • The system clock is incorrect",
			"",
		}
	case ClassServer:
		return []string{
			fmt.Sprintf("⚠️  Server error while %s", context),
			"",
			"The query service reported an internal error. Please try again in a few minutes.",
			"",
		}
	}
	return []string{
		fmt.Sprintf("❌ Cannot reach %s while %s", host, context),
		"",
		"Please check your internet connection and firewall settings.",
		"",
	}
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// isServerError reports a 5xx status carried by an *errors.E.
func isServerError(err error) bool {
	var e *xerrors.E
	return errors.As(err, &e) && e.Status >= 500 && e.Status <= 599
}

func hostOf(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return ExtractHostFromURL(uerr.URL)
	}
	return "server"
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

package netutil

import (
	"net"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/idna"
)

const (
	maxDomainNameSize = 253
)

// ValidateHTTPURL checks that value is an absolute http or https URL with a
// valid host. Nothing is resolved or fetched.
func ValidateHTTPURL(value string, requireSecureConnection bool) error {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return errors.Wrap(err, "url is malformed")
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if requireSecureConnection {
			return errors.New("url scheme must be https")
		}
	default:
		return errors.New("url scheme must be http or https")
	}

	// Hosts are case-insensitive, but registration rules reject upper case.
	host := strings.ToLower(parsed.Hostname())
	if len(host) == 0 {
		return errors.New("host component missing")
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if err := ValidateDomainName(host); err != nil {
		return errors.Wrap(err, "host is not a valid domain name")
	}
	return nil
}

// ValidateDomainName validates the string value as a domain name
func ValidateDomainName(value string) error {
	if len(value) == 0 {
		return errors.New("domain name is empty")
	}
	if len(value) > maxDomainNameSize {
		return errors.New("domain name length exceeds limit")
	}
	if _, err := idna.Registration.ToASCII(value); err != nil {
		return errors.Wrap(err, "domain name is invalid")
	}
	return nil
}

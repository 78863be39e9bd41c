package aws

import (
	"context"
	"crypto/sha1" // #nosec G505 -- IAM thumbprint lists are SHA-1 fingerprints
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
)

// RootThumbprint returns the hex SHA-1 fingerprint of the root certificate
// presented by the issuer host, the format IAM expects in an identity
// provider's thumbprint list. The presented chain is itself the trust
// anchor being established, so the handshake does not verify it.
func RootThumbprint(ctx context.Context, issuerURL string) (string, error) {
	u, err := url.Parse(issuerURL)
	if err != nil {
		return "", fmt.Errorf("parsing issuer URL %q: %w", issuerURL, err)
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "443")
	}

	dialer := &tls.Dialer{Config: &tls.Config{InsecureSkipVerify: true}} // #nosec G402
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return "", fmt.Errorf("connecting to issuer %s: %w", host, err)
	}
	defer func() { _ = conn.Close() }()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return "", fmt.Errorf("issuer %s presented no certificates", host)
	}

	root := certs[len(certs)-1]
	sum := sha1.Sum(root.Raw) // #nosec G401
	return hex.EncodeToString(sum[:]), nil
}

// Package auth verifies merchant session tokens and resolves them to shops.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Session token errors.
var (
	// ErrInvalidToken is returned for malformed or tampered tokens.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrExpiredToken is returned when the token is outside its validity window.
	ErrExpiredToken = errors.New("expired session token")
)

// sessionClaims is the JWT payload of a merchant session token. The dest
// claim carries the shop origin, e.g. "https://store.myshopify.com".
type sessionClaims struct {
	Dest string `json:"dest"`
	Iss  string `json:"iss"`
	Exp  int64  `json:"exp"`
	Nbf  int64  `json:"nbf"`
	Sub  string `json:"sub"`
}

type sessionHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// VerifySessionToken checks an HS256-signed session token against the shared
// secret and returns the shop domain it was issued for.
func VerifySessionToken(token, secret string, now time.Time) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 segments, got %d", ErrInvalidToken, len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: decode header: %v", ErrInvalidToken, err)
	}
	var header sessionHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "", fmt.Errorf("%w: parse header: %v", ErrInvalidToken, err)
	}
	if header.Alg != "HS256" {
		return "", fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidToken, header.Alg)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: decode signature: %v", ErrInvalidToken, err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: decode payload: %v", ErrInvalidToken, err)
	}
	var claims sessionClaims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return "", fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}

	if claims.Exp != 0 && now.Unix() >= claims.Exp {
		return "", ErrExpiredToken
	}
	if claims.Nbf != 0 && now.Unix() < claims.Nbf {
		return "", ErrExpiredToken
	}

	shopDomain, err := shopDomainFromDest(claims.Dest)
	if err != nil {
		return "", err
	}

	// iss carries the same origin with an /admin suffix; reject a mismatch.
	if claims.Iss != "" && !strings.HasPrefix(claims.Iss, claims.Dest) {
		return "", fmt.Errorf("%w: iss does not match dest", ErrInvalidToken)
	}

	return shopDomain, nil
}

// shopDomainFromDest extracts the bare domain from a dest claim.
func shopDomainFromDest(dest string) (string, error) {
	if dest == "" {
		return "", fmt.Errorf("%w: missing dest claim", ErrInvalidToken)
	}
	domain := strings.TrimPrefix(dest, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")
	if domain == "" || strings.Contains(domain, "/") {
		return "", fmt.Errorf("%w: malformed dest claim", ErrInvalidToken)
	}
	return domain, nil
}

// SignSessionToken builds an HS256 session token for the given shop domain.
// Used by the dev bypass and tests; production tokens come from the platform.
func SignSessionToken(shopDomain, secret string, now time.Time, ttl time.Duration) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	claims := sessionClaims{
		Dest: "https://" + shopDomain,
		Iss:  "https://" + shopDomain + "/admin",
		Nbf:  now.Unix(),
		Exp:  now.Add(ttl).Unix(),
	}
	payloadBytes, _ := json.Marshal(claims)
	payload := base64.RawURLEncoding.EncodeToString(payloadBytes)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(header + "." + payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return header + "." + payload + "." + sig
}

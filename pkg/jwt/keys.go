package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// LoadKey resolves the verification key for the configured algorithms.
// HS* algorithms use secret; asymmetric ones read a PEM public key from
// publicKeyPath. All algorithms must belong to the same family.
func LoadKey(algorithms []string, secret, publicKeyPath string) (any, error) {
	if len(algorithms) == 0 {
		return nil, errors.New("jwt: no signing algorithms configured")
	}

	family := algFamily(algorithms[0])
	for _, alg := range algorithms[1:] {
		if algFamily(alg) != family {
			return nil, fmt.Errorf("jwt: algorithms %q and %q need different keys", algorithms[0], alg)
		}
	}

	if family == "HS" {
		if secret == "" {
			return nil, errors.New("jwt: signing key is required for HMAC algorithms")
		}
		return []byte(secret), nil
	}

	if publicKeyPath == "" {
		return nil, fmt.Errorf("jwt: public key path is required for %s", algorithms[0])
	}
	pemBytes, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("jwt: read public key: %w", err)
	}

	switch family {
	case "RS", "PS":
		return gojwt.ParseRSAPublicKeyFromPEM(pemBytes)
	case "ES":
		return gojwt.ParseECPublicKeyFromPEM(pemBytes)
	case "EdDSA":
		k, err := gojwt.ParseEdPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, err
		}
		edKey, ok := k.(ed25519.PublicKey)
		if !ok {
			return nil, fmt.Errorf("jwt: unexpected EdDSA key type %T", k)
		}
		return edKey, nil
	default:
		return nil, fmt.Errorf("jwt: unsupported signing algorithm %q", algorithms[0])
	}
}

func algFamily(alg string) string {
	if alg == "EdDSA" {
		return alg
	}
	if len(alg) < 2 {
		return alg
	}
	return strings.ToUpper(alg[:2])
}

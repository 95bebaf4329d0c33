package services

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	appleIssuer  = "https://appleid.apple.com"
	appleJWKSURL = "https://appleid.apple.com/auth/keys"
)

type AppleIdentity struct {
	Sub           string
	Email         string
	EmailVerified bool
}

// AppleVerifier validates Apple Sign-In identity tokens: RS256 signature
// against Apple's JWKS, issuer, and the configured bundle id audience.
type AppleVerifier interface {
	Verify(ctx context.Context, identityToken string) (*AppleIdentity, error)
}

type appleVerifier struct {
	httpClient *http.Client
	clientID   string
	keys       *jwksCache
}

func NewAppleVerifier(httpClient *http.Client, clientID string) (AppleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("APPLE_CLIENT_ID is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &appleVerifier{
		httpClient: httpClient,
		clientID:   clientID,
		keys:       &jwksCache{httpClient: httpClient},
	}, nil
}

type appleClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified any    `json:"email_verified,omitempty"`
}

func (v *appleVerifier) Verify(ctx context.Context, identityToken string) (*AppleIdentity, error) {
	keyfunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}
		return v.keys.keyFor(ctx, appleJWKSURL, kid)
	}

	claims := &appleClaims{}
	parsed, err := jwt.ParseWithClaims(identityToken, claims, keyfunc,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(appleIssuer),
		jwt.WithAudience(v.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid apple identity token: %v", ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: apple identity token missing subject", ErrUnauthorized)
	}

	// Apple sends email_verified as either bool or "true"/"false"
	verified := false
	switch ev := claims.EmailVerified.(type) {
	case bool:
		verified = ev
	case string:
		verified = ev == "true"
	}

	return &AppleIdentity{
		Sub:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: verified,
	}, nil
}

type jwkSet struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

type jwksCache struct {
	httpClient *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func (j *jwksCache) keyFor(ctx context.Context, url, kid string) (*rsa.PublicKey, error) {
	j.mu.RLock()
	key := j.keys[kid]
	fresh := time.Since(j.fetchedAt) < 15*time.Minute
	j.mu.RUnlock()
	if key != nil && fresh {
		return key, nil
	}

	if err := j.refresh(ctx, url); err != nil {
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	key = j.keys[kid]
	if key == nil {
		return nil, fmt.Errorf("kid not found in jwks: %s", kid)
	}
	return key, nil
}

func (j *jwksCache) refresh(ctx context.Context, url string) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := j.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed: %s", res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return err
	}

	next := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if k.Kty != "RSA" || strings.TrimSpace(k.Kid) == "" {
			continue
		}
		pub, err := rsaFromModExp(k.N, k.E)
		if err == nil {
			next[k.Kid] = pub
		}
	}
	if len(next) == 0 {
		return fmt.Errorf("jwks contained no usable keys")
	}

	j.mu.Lock()
	j.keys = next
	j.fetchedAt = time.Now()
	j.mu.Unlock()
	return nil
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}

	n := new(big.Int).SetBytes(nb)
	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}

package activation

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mubas-somase/voting-backend/internal/domain/user"
)

const (
	Purpose    = "account_activation"
	DefaultTTL = 24 * time.Hour
)

var ErrNilAccount = errors.New("account is nil")

// Issuer signs activation tokens. A token carries a fingerprint of the
// account's security state, so activating the account or changing its
// password invalidates every token issued before.
type Issuer struct {
	secret        []byte
	ttl           time.Duration
	signingMethod *jwt.SigningMethodHMAC
	now           func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	if len(secret) == 0 {
		panic("secret key is required for activation issuer")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		secret:        secret,
		ttl:           ttl,
		signingMethod: jwt.SigningMethodHS256,
		now:           time.Now,
	}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(a *user.Account) (string, error) {
	if a == nil {
		return "", ErrNilAccount
	}

	now := i.now()
	token := jwt.NewWithClaims(i.signingMethod, jwt.MapClaims{
		"sub":     a.ID().String(),
		"purpose": Purpose,
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(i.ttl)),
		"fp":      fingerprint(a),
	})

	return token.SignedString(i.secret)
}

func (i *Issuer) Verify(a *user.Account, token string) bool {
	if a == nil || token == "" {
		return false
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.signingMethod.Alg()}),
		jwt.WithSubject(a.ID().String()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	if purpose, _ := claims["purpose"].(string); purpose != Purpose {
		return false
	}
	fp, _ := claims["fp"].(string)

	return subtle.ConstantTimeCompare([]byte(fp), []byte(fingerprint(a))) == 1
}

func fingerprint(a *user.Account) string {
	h := sha256.New()
	writeField(h, []byte(a.ID().String()))
	writeField(h, a.PassHash())
	writeField(h, []byte{boolByte(a.IsActive()), boolByte(a.IsEmailVerified())})
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes b so adjacent fields cannot run together.
func writeField(h hash.Hash, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = h.Write(n[:])
	_, _ = h.Write(b)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

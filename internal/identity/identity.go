package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"guestbook/internal/model"
)

const (
	// CookieName holds the signed display name
	CookieName = "guestbook_identity"

	// MaxNameLength bounds the display name in characters
	MaxNameLength = model.MaxUsernameLength
)

var ErrNameTooLong = model.ErrUsernameTooLong

// Store remembers the caller's self-reported display name between requests.
type Store interface {
	// Load returns the stored name, or "" when absent or tampered with.
	Load(r *http.Request) string
	Save(w http.ResponseWriter, name string) error
}

// CookieStore keeps the display name client-side in an HMAC-signed JWT cookie.
// The name is not a credential; signing only stops other sites and scripts
// from planting one.
type CookieStore struct {
	secret []byte
	maxAge int
	secure bool
	now    func() time.Time
}

// NewCookieStore builds a store signing with secret. maxAge is in seconds.
func NewCookieStore(secret string, maxAge int, secure bool) *CookieStore {
	return &CookieStore{
		secret: []byte(secret),
		maxAge: maxAge,
		secure: secure,
		now:    time.Now,
	}
}

// NormalizeName trims a display name and checks it is usable.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrIdentityRequired
	}
	if !model.IsStorableText(name) {
		return "", model.ErrInvalidText
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func (s *CookieStore) Load(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	name, _ := claims["name"].(string)
	name, err = NormalizeName(name)
	if err != nil {
		return ""
	}
	return name
}

func (s *CookieStore) Save(w http.ResponseWriter, name string) error {
	name, err := NormalizeName(name)
	if err != nil {
		return err
	}
	if len(s.secret) == 0 {
		return errors.New("identity secret not configured")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Duration(s.maxAge) * time.Second).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign identity: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   s.maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

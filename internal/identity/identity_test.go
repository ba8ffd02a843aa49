package identity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/model"
)

func roundTrip(t *testing.T, save *CookieStore, load *CookieStore, name string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, save.Save(rec, name))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return load.Load(req)
}

func TestCookieStore_RoundTrip(t *testing.T) {
	store := NewCookieStore("secret", 3600, false)
	assert.Equal(t, "Anh Nguyễn", roundTrip(t, store, store, "  Anh Nguyễn "))
}

func TestCookieStore_CookieAttributes(t *testing.T) {
	store := NewCookieStore("secret", 3600, true)
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, "alice"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestCookieStore_RejectsForeignSignature(t *testing.T) {
	mine := NewCookieStore("secret", 3600, false)
	theirs := NewCookieStore("other-secret", 3600, false)
	assert.Equal(t, "", roundTrip(t, theirs, mine, "mallory"))
}

func TestCookieStore_Expired(t *testing.T) {
	store := NewCookieStore("secret", 60, false)
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, "alice"))

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	assert.Equal(t, "", store.Load(req))
}

func TestCookieStore_NoCookieOrGarbage(t *testing.T) {
	store := NewCookieStore("secret", 3600, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", store.Load(req))

	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not.a.jwt"})
	assert.Equal(t, "", store.Load(req))
}

func TestCookieStore_SaveValidation(t *testing.T) {
	store := NewCookieStore("secret", 3600, false)

	err := store.Save(httptest.NewRecorder(), "   ")
	assert.ErrorIs(t, err, model.ErrIdentityRequired)

	err = store.Save(httptest.NewRecorder(), strings.Repeat("n", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)
	assert.ErrorIs(t, err, model.ErrValidation)

	err = NewCookieStore("", 3600, false).Save(httptest.NewRecorder(), "alice")
	assert.Error(t, err)
}

func TestNormalizeName_SharesUsernameRules(t *testing.T) {
	_, err := NormalizeName("bob\x00")
	assert.ErrorIs(t, err, model.ErrInvalidText)

	_, err = NormalizeName(strings.Repeat("n", model.MaxUsernameLength+1))
	assert.ErrorIs(t, err, model.ErrUsernameTooLong)

	name, err := NormalizeName(strings.Repeat("n", model.MaxUsernameLength))
	require.NoError(t, err)
	assert.Len(t, name, model.MaxUsernameLength)
}

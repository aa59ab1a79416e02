// Package cookie stores the session user ID in an AES-GCM encrypted cookie.
package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const cookieName string = "session"

var ErrInvalidValue = errors.New("invalid cookie value")

// ParseKey decodes a hex SECRET_KEY into an AES-128, 192 or 256 key.
func ParseKey(raw string) ([]byte, error) {
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode SECRET_KEY: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("SECRET_KEY must decode to 16, 24 or 32 bytes, got %d", len(key))
	}
}

func newGCM(secret []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// seal encrypts "name:userID" so a value cannot be replayed under another
// cookie name. The output is base64(nonce || ciphertext).
func seal(userID uuid.UUID, secret []byte, name string) (string, error) {
	aead, err := newGCM(secret)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	plaintext := fmt.Sprintf("%s:%s", name, userID)
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.URLEncoding.EncodeToString(sealed), nil
}

func open(value string, secret []byte, name string) (*uuid.UUID, error) {
	raw, err := base64.URLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidValue
	}

	aead, err := newGCM(secret)
	if err != nil {
		return nil, err
	}

	if len(raw) < aead.NonceSize() {
		return nil, ErrInvalidValue
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidValue
	}

	gotName, rawID, ok := strings.Cut(string(plaintext), ":")
	if !ok || gotName != name {
		return nil, ErrInvalidValue
	}

	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, ErrInvalidValue
	}
	return &userID, nil
}

// GetCookie decrypts the session cookie and returns the user ID it carries.
func GetCookie(r *http.Request, secret []byte) (*uuid.UUID, error) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return nil, err
	}

	return open(c.Value, secret, cookieName)
}

// SetCookie writes an encrypted session cookie for userID.
func SetCookie(w http.ResponseWriter, userID uuid.UUID, secret []byte, secure bool) error {
	value, err := seal(userID, secret, cookieName)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		HttpOnly: true,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		HttpOnly: true,
		Path:     "/",
		MaxAge:   -1,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

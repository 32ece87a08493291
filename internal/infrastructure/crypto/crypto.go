package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

const sealedPrefix = "enc:v1:"

// Sealer encrypts short strings (contact details) with AES-256-GCM.
type Sealer struct{ aead cipher.AEAD }

func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes (got %d)", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	a, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: a}, nil
}

// Seal returns a prefixed base64 ciphertext. Empty input stays empty.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := s.aead.Seal(nil, nonce, []byte(plaintext), nil)
	buf := append(nonce, ct...)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(buf), nil
}

// Open reverses Seal. Values without the prefix were stored in clear and are
// returned unchanged.
func (s *Sealer) Open(v string) (string, error) {
	rest, ok := strings.CutPrefix(v, sealedPrefix)
	if !ok {
		return v, nil
	}
	buf, err := base64.RawStdEncoding.DecodeString(rest)
	if err != nil {
		return "", err
	}
	ns := s.aead.NonceSize()
	if len(buf) < ns {
		return "", fmt.Errorf("ciphertext too short")
	}
	pt, err := s.aead.Open(nil, buf[:ns], buf[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

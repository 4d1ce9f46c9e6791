package sessionstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

var (
	// ErrEncryptionFailed is returned when sealing a session payload fails.
	ErrEncryptionFailed = errors.New("failed to encrypt session payload")
	// ErrDecryptionFailed is returned when a persisted payload cannot be
	// opened: wrong key, truncation, or tampering.
	ErrDecryptionFailed = errors.New("failed to decrypt session payload")
)

// hkdfInfo domain-separates the derived key from any other use of the
// master key.
var hkdfInfo = []byte("erpauth session storage v1")

// sealer performs AES-256-GCM authenticated encryption with a key derived
// from the master key via HKDF-SHA256.
type sealer struct {
	aead cipher.AEAD
}

func newSealer(masterKey []byte) (*sealer, error) {
	if len(masterKey) != KeySize {
		return nil, errors.Join(ErrKeyInit, errors.New("master key must be 32 bytes"))
	}

	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, hkdfInfo), derived); err != nil {
		return nil, errors.Join(ErrKeyInit, err)
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, errors.Join(ErrKeyInit, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrKeyInit, err)
	}

	return &sealer{aead: aead}, nil
}

// seal encrypts plaintext with a fresh random nonce, returning
// nonce ‖ ciphertext ‖ tag.
func (s *sealer) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts data produced by seal. Any modification of the payload,
// including truncation, yields ErrDecryptionFailed.
func (s *sealer) open(data []byte) ([]byte, error) {
	if len(data) < s.aead.NonceSize() {
		return nil, ErrDecryptionFailed
	}
	nonce, ciphertext := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

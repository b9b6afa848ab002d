package storage

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength   = 32
	nonceLength = 12
	saltLength  = 32
	iterations  = 100000
)

// ErrDecrypt is returned when a sealed slot cannot be opened with the
// passphrase, including when its nonce has the wrong length.
var ErrDecrypt = errors.New("invalid passphrase or corrupted data")

type EncryptedData struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func Encrypt(data []byte, password string) (*EncryptedData, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	aesGCM, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return &EncryptedData{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aesGCM.Seal(nil, nonce, data, nil),
	}, nil
}

func Decrypt(encData *EncryptedData, password string) ([]byte, error) {
	if encData == nil {
		return nil, errors.New("encrypted data is nil")
	}

	aesGCM, err := newGCM(password, encData.Salt)
	if err != nil {
		return nil, err
	}

	if len(encData.Nonce) != aesGCM.NonceSize() {
		return nil, ErrDecrypt
	}

	plaintext, err := aesGCM.Open(nil, encData.Nonce, encData.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptedSlot seals everything written to the inner slot with a key
// derived from the passphrase.
type EncryptedSlot struct {
	inner      Slot
	passphrase string
}

var _ Slot = (*EncryptedSlot)(nil)

func NewEncryptedSlot(inner Slot, passphrase string) *EncryptedSlot {
	return &EncryptedSlot{inner: inner, passphrase: passphrase}
}

func (s *EncryptedSlot) Read(ctx context.Context) ([]byte, error) {
	sealed, err := s.inner.Read(ctx)
	if err != nil || len(bytes.TrimSpace(sealed)) == 0 {
		return nil, err
	}

	var encData EncryptedData
	if err := json.Unmarshal(sealed, &encData); err != nil {
		return nil, fmt.Errorf("%w: unreadable envelope: %v", ErrCorruptSlot, err)
	}

	data, err := Decrypt(&encData, s.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt slot: %w", err)
	}
	return data, nil
}

func (s *EncryptedSlot) Write(ctx context.Context, data []byte) error {
	encData, err := Encrypt(data, s.passphrase)
	if err != nil {
		return fmt.Errorf("failed to encrypt slot: %w", err)
	}

	sealed, err := json.Marshal(encData)
	if err != nil {
		return fmt.Errorf("failed to marshal encrypted slot: %w", err)
	}
	return s.inner.Write(ctx, sealed)
}

func (s *EncryptedSlot) Close() error {
	return s.inner.Close()
}

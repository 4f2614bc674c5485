// Package secretbox реализует обратимое шифрование учётных данных
// Instagram-аккаунтов перед записью в базу. Используется NaCl secretbox
// (XSalsa20-Poly1305) с общим ключом из конфига; nonce генерируется на
// каждое сообщение и хранится в начале шифротекста.
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const keySize = 32

// Cipher шифрует и расшифровывает строки общим ключом.
type Cipher struct {
	key [keySize]byte
}

// New создаёт Cipher из base64-ключа. Ключ обязан декодироваться ровно в 32 байта.
func New(base64Key string) (*Cipher, error) {
	const op = "secretbox.New"
	raw, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("%s: key must be %d bytes, got %d", op, keySize, len(raw))
	}
	c := &Cipher{}
	copy(c.key[:], raw)
	return c, nil
}

// Encrypt шифрует строку и возвращает base64(nonce || ciphertext).
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	const op = "secretbox.Encrypt"
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt расшифровывает строку, выданную Encrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	const op = "secretbox.Decrypt"
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(raw) < 24 {
		return "", fmt.Errorf("%s: %w", op, errors.New("ciphertext too short"))
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, errors.New("decryption failed"))
	}
	return string(plaintext), nil
}

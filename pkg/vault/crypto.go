package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
)

// Cipher seals and opens secret values with AES-GCM. The stored format is
// versioned: 0x01 | nonce | ciphertext.
type Cipher struct {
	key []byte
}

func NewCipher(key string) *Cipher {
	if key == "" {
		return nil
	}
	return &Cipher{key: []byte(key)}
}

func (c *Cipher) gcm() (cipher.AEAD, error) {
	h := sha256.Sum256(c.key)
	block, err := aes.NewCipher(h[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (c *Cipher) Encrypt(plain []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := gcm.Seal(nil, nonce, plain, nil)
	out := make([]byte, 1+len(nonce)+len(ct))
	out[0] = 0x01
	copy(out[1:1+len(nonce)], nonce)
	copy(out[1+len(nonce):], ct)
	return out, nil
}

func (c *Cipher) Decrypt(blob []byte) ([]byte, error) {
	if len(blob) < 2 {
		return nil, fmt.Errorf("invalid blob")
	}
	if blob[0] != 0x01 {
		return nil, fmt.Errorf("unsupported version")
	}
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}
	if len(blob) < 1+gcm.NonceSize() {
		return nil, fmt.Errorf("short nonce")
	}
	nonce := blob[1 : 1+gcm.NonceSize()]
	ct := blob[1+gcm.NonceSize():]
	return gcm.Open(nil, nonce, ct, nil)
}

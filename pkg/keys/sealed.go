// Package keys seals and opens the relayer's secp256k1 signing key.
// A sealed key is base64(salt || nonce || ciphertext || tag): AES-256-GCM with a
// key derived from an operator passphrase via scrypt.
package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize = 16
	keySize  = 32

	// scrypt parameters (interactive profile)
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// Seal encrypts a 32-byte secp256k1 private key with a passphrase.
func Seal(privateKey []byte, passphrase string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("passphrase must not be empty")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	masterKey, err := deriveKey(passphrase, salt)
	if err != nil {
		return "", err
	}

	sealed, err := encryptPrivateKey(privateKey, masterKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(append(salt, sealed...)), nil
}

// Open reverses Seal and returns the raw private key bytes.
func Open(sealed string, passphrase string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sealed))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	if len(raw) <= saltSize {
		return nil, fmt.Errorf("sealed key too short")
	}

	masterKey, err := deriveKey(passphrase, raw[:saltSize])
	if err != nil {
		return nil, err
	}
	return decryptPrivateKey(raw[saltSize:], masterKey)
}

// LoadECDSA returns the signing key from either a hex private key or a sealed
// key plus passphrase.
func LoadECDSA(hexKey, sealed, passphrase string) (*ecdsa.PrivateKey, error) {
	var keyBytes []byte
	switch {
	case hexKey != "":
		b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to decode private key hex: %w", err)
		}
		keyBytes = b
	case sealed != "":
		b, err := Open(sealed, passphrase)
		if err != nil {
			return nil, err
		}
		keyBytes = b
	default:
		return nil, fmt.Errorf("no signing key configured")
	}

	key, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	return key, nil
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// encryptPrivateKey returns nonce || ciphertext || tag.
func encryptPrivateKey(privateKey []byte, masterKey []byte) ([]byte, error) {
	if len(masterKey) != keySize {
		return nil, fmt.Errorf("master key must be 32 bytes (AES-256)")
	}
	if len(privateKey) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes (secp256k1)")
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, privateKey, nil), nil
}

func decryptPrivateKey(ciphertext []byte, masterKey []byte) ([]byte, error) {
	if len(masterKey) != keySize {
		return nil, fmt.Errorf("master key must be 32 bytes (AES-256)")
	}

	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	if len(plaintext) != 32 {
		return nil, fmt.Errorf("decrypted key has wrong size: got %d, want 32", len(plaintext))
	}
	return plaintext, nil
}

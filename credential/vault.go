// Package credential derives local access credentials from the encrypted
// blob published per device in the cloud manifest.
package credential

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Vendor provisioning constants, fixed by device firmware.
var (
	// bytes 0x01..0x20
	blobKey = [32]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
		0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18,
		0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f, 0x20,
	}
	blobIV = [aes.BlockSize]byte{}
)

// Local is what the local link needs to open an authenticated session.
type Local struct {
	Serial                  string `json:"serial"`
	AccessPointPasswordHash string `json:"apPasswordHash"`
}

// Decrypt is pure, safe for concurrent use.
func Decrypt(blob string) (Local, error) {
	var cred Local
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return cred, wrap(KindBase64Decode, err)
	}
	plain, err := decryptCBC(blobKey[:], blobIV[:], raw)
	if err != nil {
		return cred, wrap(KindCipher, err)
	}
	if !utf8.Valid(plain) {
		return cred, wrap(KindTextEncoding, fmt.Errorf("decrypted %d bytes are not UTF-8", len(plain)))
	}
	if cred, err = decodeLocal(plain); err != nil {
		return Local{}, wrap(KindSchema, err)
	}
	if cred.Serial == "" || cred.AccessPointPasswordHash == "" {
		return Local{}, wrap(KindSchema, fmt.Errorf("incomplete serial=%q apPasswordHash set=%t",
			cred.Serial, cred.AccessPointPasswordHash != ""))
	}
	return cred, nil
}

// Keys are case sensitive, unlike json.Unmarshal into struct.
func decodeLocal(plain []byte) (Local, error) {
	var cred Local
	var m map[string]json.RawMessage
	if err := json.Unmarshal(plain, &m); err != nil {
		return cred, err
	}
	if m == nil {
		return cred, fmt.Errorf("null")
	}
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"serial", &cred.Serial},
		{"apPasswordHash", &cred.AccessPointPasswordHash},
	} {
		raw, ok := m[f.key]
		if !ok {
			return Local{}, fmt.Errorf("key=%s missing", f.key)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return Local{}, fmt.Errorf("key=%s: %w", f.key, err)
		}
	}
	return cred, nil
}

// Encrypt is inverse of Decrypt, emulates provisioning service.
func Encrypt(cred Local) (string, error) {
	plain, err := json.Marshal(cred)
	if err != nil {
		return "", wrap(KindSchema, err)
	}
	raw, err := encryptCBC(blobKey[:], blobIV[:], plain)
	if err != nil {
		return "", wrap(KindCipher, err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func decryptCBC(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length=%d is not multiple of block size", len(data))
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	return pkcs7Unpad(out)
}

func encryptCBC(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(data)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

func pkcs7Pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	l := len(b)
	if l == 0 {
		return nil, fmt.Errorf("padding: empty")
	}
	n := int(b[l-1])
	if n == 0 || n > aes.BlockSize || n > l {
		return nil, fmt.Errorf("padding: invalid length=%d", n)
	}
	for _, p := range b[l-n:] {
		if int(p) != n {
			return nil, fmt.Errorf("padding: corrupted")
		}
	}
	return b[:l-n], nil
}

// Package signing creates and checks SSH signatures over commit payloads
// in the armored sshsig format Git writes into the gpgsig header.
package signing

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/ssh"
)

const (
	// Namespace is the sshsig namespace Git uses for commits and tags.
	Namespace = "git"

	pemType       = "SSH SIGNATURE"
	magicPreamble = "SSHSIG"
	sigVersion    = 1
	hashAlgorithm = "sha512"
)

var (
	// ErrInvalidSignature reports a signature that is malformed or does not verify.
	ErrInvalidSignature = errors.New("invalid ssh signature")
	// ErrUntrustedKey reports a valid signature made by a key outside the allowed set.
	ErrUntrustedKey = errors.New("signing key is not allowed")
)

// signedData is the structure actually signed by the key.
type signedData struct {
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Hash          []byte
}

// signatureBlob is the body of the armored signature.
type signatureBlob struct {
	Version       uint32
	PublicKey     []byte
	Namespace     string
	Reserved      string
	HashAlgorithm string
	Signature     []byte
}

func messageToSign(namespace string, message []byte) []byte {
	sum := sha512.Sum512(message)
	data := ssh.Marshal(signedData{
		Namespace:     namespace,
		HashAlgorithm: hashAlgorithm,
		Hash:          sum[:],
	})
	return append([]byte(magicPreamble), data...)
}

// LoadSigner reads an unencrypted OpenSSH private key. A leading "~/" is
// expanded to the home directory.
func LoadSigner(keyPath string) (ssh.Signer, error) {
	resolvedPath, err := expandUserPath(strings.TrimSpace(keyPath))
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return nil, fmt.Errorf("read signing key %q: %w", resolvedPath, err)
	}
	signer, err := ssh.ParsePrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse signing key %q: %w", resolvedPath, err)
	}
	return signer, nil
}

func expandUserPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("no signing key configured")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}

// Sign signs message under the git namespace and returns the armored
// signature without a trailing newline, ready for a gpgsig header.
func Sign(signer ssh.Signer, message []byte) ([]byte, error) {
	data := messageToSign(Namespace, message)

	var (
		sig *ssh.Signature
		err error
	)
	// RSA keys must not fall back to SHA-1 signatures.
	if algorithmSigner, ok := signer.(ssh.AlgorithmSigner); ok && signer.PublicKey().Type() == ssh.KeyAlgoRSA {
		sig, err = algorithmSigner.SignWithAlgorithm(rand.Reader, data, ssh.KeyAlgoRSASHA512)
	} else {
		sig, err = signer.Sign(rand.Reader, data)
	}
	if err != nil {
		return nil, fmt.Errorf("sign payload: %w", err)
	}

	blob := ssh.Marshal(signatureBlob{
		Version:       sigVersion,
		PublicKey:     signer.PublicKey().Marshal(),
		Namespace:     Namespace,
		HashAlgorithm: hashAlgorithm,
		Signature:     ssh.Marshal(sig),
	})
	armored := pem.EncodeToMemory(&pem.Block{
		Type:  pemType,
		Bytes: append([]byte(magicPreamble), blob...),
	})
	return bytes.TrimRight(armored, "\n"), nil
}

// Verify checks an armored signature over message and returns the signing
// key. When allowed is non-empty the key must be one of them.
func Verify(armored, message []byte, allowed []ssh.PublicKey) (ssh.PublicKey, error) {
	block, _ := pem.Decode(armored)
	if block == nil || block.Type != pemType {
		return nil, fmt.Errorf("%w: not an armored %s", ErrInvalidSignature, pemType)
	}

	raw, found := bytes.CutPrefix(block.Bytes, []byte(magicPreamble))
	if !found {
		return nil, fmt.Errorf("%w: missing %s preamble", ErrInvalidSignature, magicPreamble)
	}

	var blob signatureBlob
	if err := ssh.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if blob.Version != sigVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSignature, blob.Version)
	}
	if blob.Namespace != Namespace {
		return nil, fmt.Errorf("%w: namespace %q, expected %q", ErrInvalidSignature, blob.Namespace, Namespace)
	}
	if blob.HashAlgorithm != hashAlgorithm && blob.HashAlgorithm != "sha256" {
		return nil, fmt.Errorf("%w: unsupported hash %q", ErrInvalidSignature, blob.HashAlgorithm)
	}

	publicKey, err := ssh.ParsePublicKey(blob.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %w", ErrInvalidSignature, err)
	}

	var sig ssh.Signature
	if err := ssh.Unmarshal(blob.Signature, &sig); err != nil {
		return nil, fmt.Errorf("%w: signature: %w", ErrInvalidSignature, err)
	}

	data := signedPayload(blob, message)
	if err := publicKey.Verify(data, &sig); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	if len(allowed) > 0 && !isAllowed(publicKey, allowed) {
		return nil, fmt.Errorf("%w: %s", ErrUntrustedKey, ssh.FingerprintSHA256(publicKey))
	}
	return publicKey, nil
}

func signedPayload(blob signatureBlob, message []byte) []byte {
	if blob.HashAlgorithm == hashAlgorithm {
		return messageToSign(blob.Namespace, message)
	}
	sum := sha256.Sum256(message)
	data := ssh.Marshal(signedData{
		Namespace:     blob.Namespace,
		HashAlgorithm: blob.HashAlgorithm,
		Hash:          sum[:],
	})
	return append([]byte(magicPreamble), data...)
}

func isAllowed(key ssh.PublicKey, allowed []ssh.PublicKey) bool {
	marshaled := key.Marshal()
	for _, candidate := range allowed {
		if bytes.Equal(candidate.Marshal(), marshaled) {
			return true
		}
	}
	return false
}

// ParseAllowedKeys reads public keys in authorized_keys format, one per line.
// Blank lines and comments are skipped.
func ParseAllowedKeys(data []byte) ([]ssh.PublicKey, error) {
	var keys []ssh.PublicKey
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		key, _, _, _, err := ssh.ParseAuthorizedKey(line)
		if err != nil {
			return nil, fmt.Errorf("parse allowed keys line %d: %w", i+1, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

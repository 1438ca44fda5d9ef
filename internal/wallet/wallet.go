// Package wallet loads the miner's hotkey identity and signs ledger
// requests with it.
package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// Wallet is an ed25519 hotkey loaded from disk. The address is derived from
// the public key and identifies the miner to the ledger.
type Wallet struct {
	Name   string
	Hotkey string

	priv    ed25519.PrivateKey
	address string
}

// Load reads the hotkey seed from <dir>/<name>/hotkeys/<hotkey>. The file
// holds a hex-encoded 32-byte seed, with or without a 0x prefix. A missing
// or corrupt keyfile is a fatal configuration error.
func Load(dir, name, hotkey string) (*Wallet, error) {
	path := filepath.Join(dir, name, "hotkeys", hotkey)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &KeyError{Path: path, Message: "failed to read hotkey file", Cause: err}
	}

	seedHex := strings.TrimSpace(string(raw))
	seedHex = strings.TrimPrefix(seedHex, "0x")
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, &KeyError{Path: path, Message: "hotkey file is not valid hex", Cause: err}
	}
	if len(seed) != ed25519.SeedSize {
		return nil, &KeyError{Path: path, Message: "hotkey seed must be 32 bytes"}
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &Wallet{
		Name:    name,
		Hotkey:  hotkey,
		priv:    priv,
		address: deriveAddress(priv.Public().(ed25519.PublicKey)),
	}, nil
}

// FromSeed builds a wallet directly from a 32-byte seed. Used by tests and
// ephemeral identities.
func FromSeed(seed []byte) (*Wallet, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, &KeyError{Message: "hotkey seed must be 32 bytes"}
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Wallet{priv: priv, address: deriveAddress(priv.Public().(ed25519.PublicKey))}, nil
}

// deriveAddress hashes the public key with blake2b-256 and hex-encodes it.
func deriveAddress(pub ed25519.PublicKey) string {
	sum := blake2b.Sum256(pub)
	return hex.EncodeToString(sum[:])
}

// Address returns the miner's ledger address.
func (w *Wallet) Address() string { return w.address }

// PublicKey returns the hotkey's public key.
func (w *Wallet) PublicKey() ed25519.PublicKey {
	return w.priv.Public().(ed25519.PublicKey)
}

// Sign signs msg with the hotkey.
func (w *Wallet) Sign(msg []byte) []byte {
	return ed25519.Sign(w.priv, msg)
}

// Claims are the bearer-token claims presented to the ledger gateway.
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

// tokenTTL bounds how long a minted bearer token stays valid. Announce
// attempts mint a fresh token each time, so the window only needs to cover
// one request.
const tokenTTL = 5 * time.Minute

// MintToken generates a short-lived EdDSA bearer token for ledger requests.
func (w *Wallet) MintToken(now time.Time) (string, error) {
	claims := &Claims{
		Address: w.address,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   w.address,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(w.priv)
	if err != nil {
		return "", &KeyError{Message: "failed to sign bearer token", Cause: err}
	}
	return signed, nil
}

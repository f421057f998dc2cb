package sign

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip39"

	"github.com/tronkit/tronkit/pkg/address"
)

// CoinType is the SLIP-44 coin type of TRX.
const CoinType = 195

// KeyPair is a secp256k1 key pair. It is never persisted by tronkit.
type KeyPair struct {
	PrivateKey []byte // 32-byte scalar
	PublicKey  []byte // 65-byte uncompressed point
}

// GenerateKeyPair creates a key pair with a uniformly random scalar in [1, n-1].
func GenerateKeyPair() (KeyPair, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	defer key.Zero()
	return keyPairOf(key), nil
}

// KeyPairFromPrivateKey computes the public key of a hex private key.
func KeyPairFromPrivateKey(privateKeyHex string) (KeyPair, error) {
	key, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return KeyPair{}, err
	}
	defer key.Zero()
	return keyPairOf(key), nil
}

// NewMnemonic returns a fresh BIP-39 mnemonic; bits is 128 (12 words) to 256 (24 words).
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("failed to create entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// KeyPairFromMnemonic derives the key at m/44'/195'/0'/0/index.
func KeyPairFromMnemonic(mnemonic, passphrase string, index uint32) (KeyPair, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	defer clear(seed)

	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to create master key: %w", err)
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + CoinType,
		hdkeychain.HardenedKeyStart + 0,
		0,
		index,
	}
	child := master
	for _, i := range path {
		child, err = child.Derive(i)
		if err != nil {
			return KeyPair{}, fmt.Errorf("failed to derive child %d: %w", i, err)
		}
	}

	priv, err := child.ECPrivKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to extract private key: %w", err)
	}
	defer priv.Zero()
	return keyPairOf(priv), nil
}

// keyPairOf copies the key material out of key so the caller can zero it.
func keyPairOf(key *secp256k1.PrivateKey) KeyPair {
	return KeyPair{
		PrivateKey: key.Serialize(),
		PublicKey:  key.PubKey().SerializeUncompressed(),
	}
}

func (kp KeyPair) PrivateKeyHex() string { return hex.EncodeToString(kp.PrivateKey) }
func (kp KeyPair) PublicKeyHex() string  { return hex.EncodeToString(kp.PublicKey) }

// Address derives the address and attaches both keys to it.
func (kp KeyPair) Address() (address.Address, error) {
	return address.FromKeys(kp.PublicKeyHex(), kp.PrivateKeyHex())
}

// Signer returns a TronSigner for the pair.
func (kp KeyPair) Signer(opts ...Option) (*TronSigner, error) {
	return NewTronSigner(kp.PrivateKeyHex(), opts...)
}

// String never prints the private key.
func (kp KeyPair) String() string {
	return fmt.Sprintf("KeyPair{PublicKey: %x, PrivateKey: [REDACTED]}", kp.PublicKey)
}

func (kp KeyPair) GoString() string { return kp.String() }

// Zero wipes the private key.
func (kp KeyPair) Zero() { clear(kp.PrivateKey) }

// NewAddress generates a fresh key pair and returns its address, keys attached.
func NewAddress() (address.Address, error) {
	kp, err := GenerateKeyPair()
	if err != nil {
		return address.Address{}, err
	}
	return kp.Address()
}

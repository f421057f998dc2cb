package main

import (
	"context"
	"fmt"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/log"
	"github.com/tronkit/tronkit/pkg/sign"
)

type newAddressOutput struct {
	Address        string `json:"address"`
	Hex            string `json:"hex"`
	PublicKey      string `json:"publicKey"`
	PrivateKey     string `json:"privateKey"`
	Mnemonic       string `json:"mnemonic,omitempty"`
	DerivationPath string `json:"derivationPath,omitempty"`
}

type addressOutput struct {
	Address string `json:"address"`
	Hex     string `json:"hex"`
	Valid   bool   `json:"valid"`
}

// runAddressNewCli generates a key pair and prints it once. With the
// "mnemonic" argument the pair is derived from a fresh 12-word mnemonic.
// Example: tronkit address-new mnemonic
func runAddressNewCli(_ context.Context, logger log.Logger, args []string) error {
	if len(args) > 1 || (len(args) == 1 && args[0] != "mnemonic") {
		return fmt.Errorf("unexpected arguments %q", args)
	}

	var (
		kp       sign.KeyPair
		mnemonic string
		path     string
		err      error
	)
	if len(args) == 1 {
		if mnemonic, err = sign.NewMnemonic(128); err != nil {
			return err
		}
		if kp, err = sign.KeyPairFromMnemonic(mnemonic, "", 0); err != nil {
			return err
		}
		path = fmt.Sprintf("m/44'/%d'/0'/0/0", sign.CoinType)
	} else if kp, err = sign.GenerateKeyPair(); err != nil {
		return err
	}
	defer kp.Zero()

	addr, err := kp.Address()
	if err != nil {
		return err
	}
	logger.Info("generated address", "address", addr.Base58())

	return printJSON(newAddressOutput{
		Address:        addr.Base58(),
		Hex:            addr.Hex(),
		PublicKey:      kp.PublicKeyHex(),
		PrivateKey:     kp.PrivateKeyHex(),
		Mnemonic:       mnemonic,
		DerivationPath: path,
	})
}

// Example: tronkit address-validate TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t
func runAddressValidateCli(_ context.Context, _ log.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one address, got %d arguments", len(args))
	}

	out := addressOutput{Address: args[0]}
	if addr, err := address.Parse(args[0]); err == nil {
		out = addressOutput{Address: addr.Base58(), Hex: addr.Hex(), Valid: true}
	}
	return printJSON(out)
}

// runAddressConvertCli prints both encodings of an address given in either.
// Example: tronkit address-convert 41a614f803b6fd780986a42c78ec9c7f77e6ded13c
func runAddressConvertCli(_ context.Context, _ log.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one address, got %d arguments", len(args))
	}

	addr, err := address.Parse(args[0])
	if err != nil {
		return err
	}
	return printJSON(addressOutput{Address: addr.Base58(), Hex: addr.Hex(), Valid: true})
}

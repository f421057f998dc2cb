// Package sign signs TRON transaction ids with secp256k1.
//
// Signatures are 65 bytes, r || s || recovery id, hex encoded without a 0x
// prefix when placed in a transaction. TronSigner uses RFC 6979
// deterministic nonces and by default does not normalize s to the lower half
// of the curve order; pass WithCanonical for low-S output.
//
// Usage
//
//	signer, err := sign.NewTronSigner(privateKeyHex)
//	if err != nil {
//	    return err
//	}
//	sig, err := signer.Sign(txID)
//	if err != nil {
//	    return err
//	}
//	tx.Signature = append(tx.Signature, sig.String())
//
// Key pairs come from GenerateKeyPair, KeyPairFromPrivateKey or
// KeyPairFromMnemonic (BIP-39 seed, BIP-44 path m/44'/195'/0'/0/index).
package sign

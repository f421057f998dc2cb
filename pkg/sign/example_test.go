package sign_test

import (
	"crypto/sha256"
	"fmt"
	"log"

	"github.com/tronkit/tronkit/pkg/sign"
)

// ExampleKeyPairFromPrivateKey derives the TRON address of an imported key.
func ExampleKeyPairFromPrivateKey() {
	kp, err := sign.KeyPairFromPrivateKey("da146374a75310b9666e834ee4ad0866d6f4035967bfc76217c5a495fff9f0d0")
	if err != nil {
		log.Fatal(err)
	}
	defer kp.Zero()

	addr, err := kp.Address()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Address:", addr.Base58())
	fmt.Println("Hex:", addr.Hex())
	// Output:
	// Address: TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY
	// Hex: 41928c9af0651632157ef27a2cf17ca72c575a4d21
}

// ExampleNewTronSigner signs a transaction id and recovers the signer from it.
func ExampleNewTronSigner() {
	signer, err := sign.NewTronSigner("da146374a75310b9666e834ee4ad0866d6f4035967bfc76217c5a495fff9f0d0")
	if err != nil {
		log.Fatal(err)
	}

	txID := sha256.Sum256([]byte("raw_data"))
	sig, err := signer.Sign(txID[:])
	if err != nil {
		log.Fatal(err)
	}

	recovered, err := sign.RecoverAddress(txID[:], sig)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Signature length:", len(sig))
	fmt.Println("Recovered:", recovered)
	// Output:
	// Signature length: 65
	// Recovered: TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY
}

// ExampleSignature_String shows the hex form nodes expect, without 0x.
func ExampleSignature_String() {
	sig := sign.Signature([]byte{0x01, 0x02, 0x03, 0x04})
	fmt.Println(sig.String())
	// Output:
	// 01020304
}

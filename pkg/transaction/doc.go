// Package transaction builds, signs and broadcasts TRX transfers, and reads
// transactions back from a block explorer.
//
// The node builds the unsigned transaction; signing happens locally over its
// txID, which is checked against raw_data_hex first:
//
//	b := transaction.NewBuilder(n, transaction.WithSigner(signer))
//	tx, err := b.CreateAndSign(ctx, transaction.Transfer{
//	    To:     "TNPeeaaFB7K9cmo4uQpcU32zGK8G1NYqeL",
//	    Amount: decimal.RequireFromString("1.5"),
//	})
//	if err != nil {
//	    return err
//	}
//	res, err := b.Broadcast(ctx, tx)
package transaction

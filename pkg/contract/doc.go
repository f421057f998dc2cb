// Package contract triggers smart contract functions through a node.
//
// A call resolves the function in the contract's ABI, checks the argument
// count, encodes the arguments and then branches on whether the function is
// read-only. Read-only calls return the decoded value. Mutating calls return
// an unsigned transaction, and are only built when the fee limit lies in
// (0, MaxFeeLimit] TRX.
//
//	usdt, err := contract.NewUSDT(contract.Mainnet, contract.WithNode(n))
//	if err != nil {
//	    return err
//	}
//	balance, err := usdt.BalanceOf(ctx, holder)
package contract

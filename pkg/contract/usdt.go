package contract

import (
	"errors"
	"fmt"
)

// Network names with a known USDT deployment.
const (
	Mainnet = "mainnet"
	Shasta  = "shasta"
	Nile    = "nile"
)

var ErrUnknownNetwork = errors.New("no USDT contract known for network")

// USDTContracts maps a network name to its USDT contract address.
var USDTContracts = map[string]string{
	Mainnet: "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t",
	Shasta:  "TG3XXyExBkPp9nzdajDZsozEu4BkaSJozs",
	Nile:    "TXYZopYRdj2D9XRtbG411XZZ3kM5VkAeBf",
}

// NewUSDT creates a TRC20 client for the USDT contract of network.
func NewUSDT(network string, opts ...Option) (*TRC20, error) {
	addr, ok := USDTContracts[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	return NewTRC20(addr, opts...)
}

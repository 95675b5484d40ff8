package common

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

var supportedNetworks = map[Network]struct{}{
	NetworkMainnet: {},
	NetworkTestnet: {},
}

// NetworkParams holds the Stacks chain constants needed to encode addresses and transactions.
type NetworkParams struct {
	// TransactionVersion is the first byte of a serialized transaction.
	TransactionVersion byte
	// ChainID is the chain identifier committed to by every transaction.
	ChainID uint32
	// SingleSigAddressVersion is the c32 version of a single-sig (P2PKH) address, `SP` or `ST`.
	SingleSigAddressVersion byte
	// MultiSigAddressVersion is the c32 version of a multi-sig (P2SH) address, `SM` or `SN`.
	MultiSigAddressVersion byte
	// APIBaseURL is the default public Stacks API for the network.
	APIBaseURL string
}

var networkParams = map[Network]NetworkParams{
	NetworkMainnet: {
		TransactionVersion:      0x00,
		ChainID:                 0x00000001,
		SingleSigAddressVersion: 22,
		MultiSigAddressVersion:  20,
		APIBaseURL:              "https://api.mainnet.hiro.so",
	},
	NetworkTestnet: {
		TransactionVersion:      0x80,
		ChainID:                 0x80000000,
		SingleSigAddressVersion: 26,
		MultiSigAddressVersion:  21,
		APIBaseURL:              "https://api.testnet.hiro.so",
	},
}

func (n Network) IsSupported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

func (n Network) Params() NetworkParams {
	return networkParams[n]
}

// IsAddressVersion reports whether the c32 address version belongs to this network.
func (n Network) IsAddressVersion(version byte) bool {
	p, ok := networkParams[n]
	if !ok {
		return false
	}
	return version == p.SingleSigAddressVersion || version == p.MultiSigAddressVersion
}

func (n Network) String() string {
	return string(n)
}

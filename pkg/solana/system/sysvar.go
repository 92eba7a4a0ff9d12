package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
)

// RentSysVar is the address of the Rent sysvar, still required by
// InitializeMint.
var RentSysVar = mustDecode("SysvarRent111111111111111111111111111111111")

func mustDecode(address string) ed25519.PublicKey {
	b, err := base58.Decode(address)
	if err != nil || len(b) != ed25519.PublicKeySize {
		panic("invalid system address: " + address)
	}
	return b
}

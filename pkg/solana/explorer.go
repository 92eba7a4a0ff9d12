package solana

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58/base58"
)

const explorerBaseURL = "https://explorer.solana.com"

func explorerSuffix(network Network) string {
	if network == NetworkMainnet {
		return ""
	}
	return fmt.Sprintf("?cluster=%s", network)
}

// ExplorerTransactionURL links to the transaction on the Solana explorer.
func ExplorerTransactionURL(sig Signature, network Network) string {
	return fmt.Sprintf("%s/tx/%s%s", explorerBaseURL, sig.String(), explorerSuffix(network))
}

// ExplorerAddressURL links to the account on the Solana explorer.
func ExplorerAddressURL(account ed25519.PublicKey, network Network) string {
	return fmt.Sprintf("%s/address/%s%s", explorerBaseURL, base58.Encode(account), explorerSuffix(network))
}

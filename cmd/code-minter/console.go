package main

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/code-payments/code-minter/pkg/mint"
	"github.com/code-payments/code-minter/pkg/solana"
)

// console reports mint progress to the operator.
type console struct {
	out     io.Writer
	network solana.Network
}

func (c *console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) parameters(params *mint.Parameters) {
	md, token := params.Metadata, params.Token

	c.printf("Token information:\n")
	c.printf("- Name: %s\n", md.Name)
	c.printf("- Symbol: %s\n", md.Symbol)
	c.printf("- Image URL: %s\n", md.Image)
	c.printf("- Description: %s\n", md.Description)
	c.printf("- Royalty: %d basis points\n", md.SellerFeeBasisPoints)
	c.printf("- Decimals: %d\n", md.Decimals)
	c.printf("- Total Supply: %s\n", md.TotalSupply)
	c.printf("- Quote: %s\n", mint.QuoteToken)
	c.printf("- Min Buy: %s\n", mint.FormatAmount(token.MinBuy))
	c.printf("- Min Tick: %s\n", mint.FormatAmount(token.MinTick))
	c.printf("- Mint Disabled: %s\n", yesNo(token.MintDisabled))
	c.printf("- Renounced: %s\n", yesNo(token.Renounced))
	c.printf("- Liquidity: %d%%\n", token.LiquidityPercent)
	c.printf("- Burn: %d%%\n", token.BurnPercent)
	c.printf("- Rugpull after: %ds\n\n", token.RugpullDelaySeconds)
}

func (c *console) MetadataPublished(uri string) {
	c.printf("Metadata uploaded. URI: %s\n", uri)
}

func (c *console) MintGenerated(mint ed25519.PublicKey) {
	c.printf("Generated token address: %s\n", solana.Address(mint))
}

func (c *console) TransactionSubmitted(sig solana.Signature) {
	c.printf("Transaction submitted: %s\nWaiting for confirmation...\n", sig.String())
}

func (c *console) links(result *mint.Result) {
	if result.Signature != (solana.Signature{}) {
		c.printf("View transaction on Solana Explorer: %s\n", solana.ExplorerTransactionURL(result.Signature, c.network))
	}
	if len(result.Mint) > 0 {
		c.printf("View token on Solana Explorer: %s\n", solana.ExplorerAddressURL(result.Mint, c.network))
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

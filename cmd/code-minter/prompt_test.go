package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	input := strings.Join([]string{
		"n",             // rejected network confirmation
		"Y",             // network
		"MyToken",       // name
		"MTK",           // symbol
		"nine",          // rejected decimals
		"9",             // decimals
		"1000000",       // supply
		"",              // image, defaulted
		"A test token",  // description
		"500",           // royalty
		"USDC",          // rejected quote
		"SOL",           // quote
		"1",             // min buy
		"0.000001",      // min tick
		"0",             // mint disabled
		"1",             // renounced
		"70",            // liquidity
		"50",            // burn
		"60",            // rugpull
	}, "\n") + "\n"

	var out bytes.Buffer
	answers, err := newPrompter(strings.NewReader(input), &out).collect("devnet")
	require.NoError(t, err)

	assert.Equal(t, "Y", answers.NetworkConfirmation)
	assert.Equal(t, "9", answers.Decimals)
	assert.Equal(t, "https://example.com/image.png", answers.Image)
	assert.Equal(t, "SOL", answers.Quote)
	assert.Equal(t, "60", answers.Rugpull)

	assert.Contains(t, out.String(), "Confirm the network is devnet (Y/N):")
	assert.Contains(t, out.String(), "quote token must be SOL")
	assert.NotContains(t, out.String(), "invalid parameters")

	params, err := answers.Parse()
	require.NoError(t, err)
	assert.True(t, params.Token.Renounced)
}

func TestCollect_EOF(t *testing.T) {
	var out bytes.Buffer
	_, err := newPrompter(strings.NewReader("Y\nMyToken"), &out).collect("mainnet")
	assert.Error(t, err)
}

func TestConfirmDestination(t *testing.T) {
	const destination = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	var out bytes.Buffer
	assert.NoError(t, newPrompter(strings.NewReader(destination+"\n"), &out).confirmDestination(destination))
	assert.Contains(t, out.String(), destination)

	assert.Error(t, newPrompter(strings.NewReader("\n"), &out).confirmDestination(destination))
	assert.Error(t, newPrompter(strings.NewReader("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFiN\n"), &out).confirmDestination(destination))
}

func TestExtractConfigPath(t *testing.T) {
	path, rest := extractConfigPath([]string{"--network", "devnet"})
	assert.Equal(t, "config.yaml", path)
	assert.Equal(t, []string{"--network", "devnet"}, rest)

	path, rest = extractConfigPath([]string{"--config", "prod.yaml", "--yes"})
	assert.Equal(t, "prod.yaml", path)
	assert.Equal(t, []string{"--yes"}, rest)

	path, rest = extractConfigPath([]string{"-config=dev.yaml"})
	assert.Equal(t, "dev.yaml", path)
	assert.Empty(t, rest)
}

package mint

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAnswers() *Answers {
	return &Answers{
		NetworkConfirmation: "Y",
		TokenName:           "MyToken",
		Symbol:              "MTK",
		Decimals:            "9",
		Supply:              "1000000",
		Image:               "https://example.com/image.png",
		Description:         "A test token",
		Royalty:             "500",
		Quote:               "SOL",
		MinBuy:              "1",
		MinTick:             "0.000001",
		MintDisabled:        "1",
		Renounced:           "0",
		Liquidity:           "70",
		Burn:                "50",
		Rugpull:             "60",
	}
}

func TestParseAnswers(t *testing.T) {
	params, err := validAnswers().Parse()
	require.NoError(t, err)

	assert.EqualValues(t, 9, params.Token.Decimals)
	assert.Equal(t, 0, params.Token.TotalSupply.Cmp(big.NewRat(1_000_000, 1)))
	assert.Equal(t, 0, params.Token.MinTick.Cmp(big.NewRat(1, 1_000_000)))
	assert.True(t, params.Token.MintDisabled)
	assert.False(t, params.Token.Renounced)
	assert.EqualValues(t, 70, params.Token.LiquidityPercent)
	assert.EqualValues(t, 50, params.Token.BurnPercent)
	assert.EqualValues(t, 60, params.Token.RugpullDelaySeconds)

	assert.Equal(t, "MyToken", params.Metadata.Name)
	assert.Equal(t, "MTK", params.Metadata.Symbol)
	assert.EqualValues(t, 500, params.Metadata.SellerFeeBasisPoints)
	assert.EqualValues(t, 9, params.Metadata.Decimals)
	assert.Equal(t, "1000000", params.Metadata.TotalSupply)

	answers := validAnswers()
	answers.NetworkConfirmation = "y"
	_, err = answers.Parse()
	assert.NoError(t, err)
}

func TestParseAnswers_Invalid(t *testing.T) {
	for name, mutate := range map[string]func(*Answers){
		"declined network":   func(a *Answers) { a.NetworkConfirmation = "n" },
		"empty name":         func(a *Answers) { a.TokenName = "  " },
		"long symbol":        func(a *Answers) { a.Symbol = "ABCDEFGHIJK" },
		"negative decimals":  func(a *Answers) { a.Decimals = "-1" },
		"large decimals":     func(a *Answers) { a.Decimals = "256" },
		"fraction supply":    func(a *Answers) { a.Supply = "1/3" },
		"negative supply":    func(a *Answers) { a.Supply = "-5" },
		"text supply":        func(a *Answers) { a.Supply = "lots" },
		"overflowing supply": func(a *Answers) { a.Supply = "18446744073709551616" },
		"too precise supply": func(a *Answers) { a.Decimals = "2"; a.Supply = "1.001" },
		"relative image":     func(a *Answers) { a.Image = "image.png" },
		"royalty":            func(a *Answers) { a.Royalty = "10001" },
		"quote":              func(a *Answers) { a.Quote = "sol" },
		"flag":               func(a *Answers) { a.Renounced = "yes" },
		"liquidity":          func(a *Answers) { a.Liquidity = "101" },
		"burn":               func(a *Answers) { a.Burn = "x" },
		"rugpull":            func(a *Answers) { a.Rugpull = "-60" },
	} {
		answers := validAnswers()
		mutate(answers)

		_, err := answers.Parse()
		assert.ErrorIs(t, err, ErrInvalidParameters, name)
	}
}

func TestSupplyBaseUnits(t *testing.T) {
	for _, tc := range []struct {
		supply   string
		decimals uint8
		expected uint64
	}{
		{"1000000", 9, 1_000_000_000_000_000},
		{"0", 9, 0},
		{"1.5", 1, 15},
		{"1e3", 0, 1000},
		{"18446744073709551615", 0, 1<<64 - 1},
	} {
		supply, ok := new(big.Rat).SetString(tc.supply)
		require.True(t, ok)

		actual, err := SupplyBaseUnits(supply, tc.decimals)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, actual, tc.supply)
	}

	_, err := SupplyBaseUnits(nil, 9)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = SupplyBaseUnits(big.NewRat(1, 3), 9)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = SupplyBaseUnits(big.NewRat(18_446_744_073_709, 1), 9)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000", FormatAmount(big.NewRat(1000, 1)))
	assert.Equal(t, "0.000001", FormatAmount(big.NewRat(1, 1_000_000)))
	assert.Equal(t, "2.5", FormatAmount(big.NewRat(5, 2)))
	assert.Equal(t, "", FormatAmount(nil))
}

func TestQuestionsCoverAnswers(t *testing.T) {
	seen := make(map[*string]struct{})
	answers := &Answers{}
	for _, q := range Questions() {
		assert.NotEmpty(t, q.Prompt)
		seen[q.Answer(answers)] = struct{}{}
	}
	assert.Len(t, seen, 16)
}

package mint

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/netutil"
	"github.com/code-payments/code-minter/pkg/solana/metadata"
	"github.com/code-payments/code-minter/pkg/storage"
)

// QuoteToken is the only quote token pools can currently be created against.
const QuoteToken = "SOL"

// TokenParameters are the validated numeric parameters of a token. The
// mint-disabled, renounced, liquidity, burn and rugpull values are collected
// and echoed but have no effect on the mint transaction.
type TokenParameters struct {
	Decimals    uint8
	TotalSupply *big.Rat

	MinBuy  *big.Rat
	MinTick *big.Rat

	MintDisabled        bool
	Renounced           bool
	LiquidityPercent    uint64
	BurnPercent         uint64
	RugpullDelaySeconds uint64
}

// Parameters is everything a mint needs from the operator.
type Parameters struct {
	Token    *TokenParameters
	Metadata *storage.TokenMetadata
}

// Answers holds raw operator input, one field per question.
type Answers struct {
	NetworkConfirmation string
	TokenName           string
	Symbol              string
	Decimals            string
	Supply              string
	Image               string
	Description         string
	Royalty             string
	Quote               string
	MinBuy              string
	MinTick             string
	MintDisabled        string
	Renounced           string
	Liquidity           string
	Burn                string
	Rugpull             string
}

// Question describes one operator prompt and how its answer is validated.
type Question struct {
	Prompt   string
	Default  string
	Validate func(string) error
	Answer   func(*Answers) *string
}

// Questions returns the prompts in the order they're asked.
func Questions() []Question {
	return []Question{
		{
			Prompt:   "Confirm the target network (Y/N):",
			Validate: validateConfirmation,
			Answer:   func(a *Answers) *string { return &a.NetworkConfirmation },
		},
		{
			Prompt:   "Token name (e.g., MyToken):",
			Validate: nonEmpty("token name", metadata.MaxNameLength),
			Answer:   func(a *Answers) *string { return &a.TokenName },
		},
		{
			Prompt:   "Token symbol (e.g., MTK):",
			Validate: nonEmpty("token symbol", metadata.MaxSymbolLength),
			Answer:   func(a *Answers) *string { return &a.Symbol },
		},
		{
			Prompt:   "Token decimals (e.g., 9):",
			Validate: func(v string) error { _, err := parseDecimals(v); return err },
			Answer:   func(a *Answers) *string { return &a.Decimals },
		},
		{
			Prompt:   "Total token supply (e.g., 10000000):",
			Validate: func(v string) error { _, err := parseAmount("supply", v); return err },
			Answer:   func(a *Answers) *string { return &a.Supply },
		},
		{
			Prompt:   "Token image URL (e.g., https://example.com/image.png):",
			Default:  "https://example.com/image.png",
			Validate: validateImage,
			Answer:   func(a *Answers) *string { return &a.Image },
		},
		{
			Prompt:   "Token description:",
			Validate: nonEmpty("description", 0),
			Answer:   func(a *Answers) *string { return &a.Description },
		},
		{
			Prompt:   "Royalty in basis points (e.g., 500 for 5%):",
			Validate: func(v string) error { _, err := parseRoyalty(v); return err },
			Answer:   func(a *Answers) *string { return &a.Royalty },
		},
		{
			Prompt:   "Quote token (only SOL is supported):",
			Validate: validateQuote,
			Answer:   func(a *Answers) *string { return &a.Quote },
		},
		{
			Prompt:   "Min order size (e.g., 1):",
			Validate: func(v string) error { _, err := parseAmount("min buy", v); return err },
			Answer:   func(a *Answers) *string { return &a.MinBuy },
		},
		{
			Prompt:   "Min tick size (e.g., 0.000001):",
			Validate: func(v string) error { _, err := parseAmount("min tick", v); return err },
			Answer:   func(a *Answers) *string { return &a.MinTick },
		},
		{
			Prompt:   `Disable mint ("1" for yes, "0" for no):`,
			Validate: func(v string) error { _, err := parseFlag("mint disabled", v); return err },
			Answer:   func(a *Answers) *string { return &a.MintDisabled },
		},
		{
			Prompt:   `Renounce ownership ("1" for yes, "0" for no):`,
			Validate: func(v string) error { _, err := parseFlag("renounced", v); return err },
			Answer:   func(a *Answers) *string { return &a.Renounced },
		},
		{
			Prompt:   "Liquidity percentage of total supply (e.g., 70):",
			Validate: func(v string) error { _, err := parsePercent("liquidity", v); return err },
			Answer:   func(a *Answers) *string { return &a.Liquidity },
		},
		{
			Prompt:   "Burn percentage of liquidity (e.g., 50):",
			Validate: func(v string) error { _, err := parsePercent("burn", v); return err },
			Answer:   func(a *Answers) *string { return &a.Burn },
		},
		{
			Prompt:   "Seconds until liquidity is pulled (e.g., 60):",
			Validate: func(v string) error { _, err := parseUint("rugpull delay", v, 64); return err },
			Answer:   func(a *Answers) *string { return &a.Rugpull },
		},
	}
}

// Parse validates every answer and converts them into typed parameters.
func (a *Answers) Parse() (*Parameters, error) {
	for _, q := range Questions() {
		if err := q.Validate(*q.Answer(a)); err != nil {
			return nil, err
		}
	}

	// Validation above guarantees none of these fail.
	decimals, _ := parseDecimals(a.Decimals)
	supply, _ := parseAmount("supply", a.Supply)
	royalty, _ := parseRoyalty(a.Royalty)
	minBuy, _ := parseAmount("min buy", a.MinBuy)
	minTick, _ := parseAmount("min tick", a.MinTick)
	mintDisabled, _ := parseFlag("mint disabled", a.MintDisabled)
	renounced, _ := parseFlag("renounced", a.Renounced)
	liquidity, _ := parsePercent("liquidity", a.Liquidity)
	burn, _ := parsePercent("burn", a.Burn)
	rugpull, _ := parseUint("rugpull delay", a.Rugpull, 64)

	token := &TokenParameters{
		Decimals:            decimals,
		TotalSupply:         supply,
		MinBuy:              minBuy,
		MinTick:             minTick,
		MintDisabled:        mintDisabled,
		Renounced:           renounced,
		LiquidityPercent:    liquidity,
		BurnPercent:         burn,
		RugpullDelaySeconds: rugpull,
	}

	if _, err := SupplyBaseUnits(token.TotalSupply, token.Decimals); err != nil {
		return nil, err
	}

	return &Parameters{
		Token: token,
		Metadata: &storage.TokenMetadata{
			Name:                 strings.TrimSpace(a.TokenName),
			Symbol:               strings.TrimSpace(a.Symbol),
			Image:                strings.TrimSpace(a.Image),
			Description:          strings.TrimSpace(a.Description),
			SellerFeeBasisPoints: royalty,
			Decimals:             decimals,
			TotalSupply:          FormatAmount(supply),
		},
	}, nil
}

// SupplyBaseUnits scales a supply by 10^decimals. The result must be a whole
// number of base units that fits in a u64.
func SupplyBaseUnits(supply *big.Rat, decimals uint8) (uint64, error) {
	if supply == nil {
		return 0, errors.Wrap(ErrInvalidParameters, "supply is missing")
	}
	if supply.Sign() < 0 {
		return 0, errors.Wrap(ErrInvalidParameters, "supply must not be negative")
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Rat).Mul(supply, new(big.Rat).SetInt(scale))
	if !scaled.IsInt() {
		return 0, errors.Wrapf(ErrInvalidParameters, "supply %s has more than %d decimal places", supply.RatString(), decimals)
	}

	units := scaled.Num()
	if !units.IsUint64() {
		return 0, errors.Wrapf(ErrInvalidParameters, "supply %s with %d decimals exceeds the maximum of %d base units", supply.RatString(), decimals, uint64(1<<64-1))
	}
	return units.Uint64(), nil
}

// FormatAmount renders a parsed amount without exponent or fraction syntax.
func FormatAmount(v *big.Rat) string {
	if v == nil {
		return ""
	}
	if v.IsInt() {
		return v.Num().String()
	}

	s := v.FloatString(64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func validateConfirmation(v string) error {
	if v != "Y" && v != "y" {
		return errors.Wrap(ErrInvalidParameters, "confirm the target network with Y to proceed")
	}
	return nil
}

func validateImage(v string) error {
	if err := nonEmpty("image url", 0)(v); err != nil {
		return err
	}
	if err := netutil.ValidateHTTPURL(v, false); err != nil {
		return errors.Wrapf(ErrInvalidParameters, "image url is invalid: %v", err)
	}
	return nil
}

func validateQuote(v string) error {
	if v != QuoteToken {
		return errors.Wrapf(ErrInvalidParameters, "quote token must be %s (case-sensitive)", QuoteToken)
	}
	return nil
}

func nonEmpty(field string, maxLength int) func(string) error {
	return func(v string) error {
		v = strings.TrimSpace(v)
		if len(v) == 0 {
			return errors.Wrapf(ErrInvalidParameters, "%s is required", field)
		}
		if maxLength > 0 && len(v) > maxLength {
			return errors.Wrapf(ErrInvalidParameters, "%s must be at most %d bytes", field, maxLength)
		}
		return nil
	}
}

func parseUint(field, v string, bits int) (uint64, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, bits)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidParameters, "%s must be a whole number", field)
	}
	return parsed, nil
}

func parseDecimals(v string) (uint8, error) {
	parsed, err := parseUint("decimals", v, 8)
	if err != nil {
		return 0, err
	}
	return uint8(parsed), nil
}

func parseRoyalty(v string) (uint16, error) {
	parsed, err := parseUint("royalty", v, 16)
	if err != nil {
		return 0, err
	}
	if parsed > metadata.MaxSellerFeeBasisPoints {
		return 0, errors.Wrapf(ErrInvalidParameters, "royalty must be at most %d basis points", metadata.MaxSellerFeeBasisPoints)
	}
	return uint16(parsed), nil
}

func parsePercent(field, v string) (uint64, error) {
	parsed, err := parseUint(field, v, 64)
	if err != nil {
		return 0, err
	}
	if parsed > 100 {
		return 0, errors.Wrapf(ErrInvalidParameters, "%s must be a percentage between 0 and 100", field)
	}
	return parsed, nil
}

func parseFlag(field, v string) (bool, error) {
	switch strings.TrimSpace(v) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, errors.Wrapf(ErrInvalidParameters, `%s must be "1" or "0"`, field)
}

// parseAmount parses a non-negative decimal number exactly, with optional
// exponent, so no precision is lost before scaling.
func parseAmount(field, v string) (*big.Rat, error) {
	v = strings.TrimSpace(v)
	if len(v) == 0 || strings.ContainsAny(v, "/") {
		return nil, errors.Wrapf(ErrInvalidParameters, "%s must be a number", field)
	}

	parsed, ok := new(big.Rat).SetString(v)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParameters, "%s must be a number", field)
	}
	if parsed.Sign() < 0 {
		return nil, errors.Wrapf(ErrInvalidParameters, "%s must not be negative", field)
	}
	return parsed, nil
}

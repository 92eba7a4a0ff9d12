package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/solana/metadata"
)

var (
	// ErrUploadFailed wraps every failure to publish metadata.
	ErrUploadFailed = errors.New("metadata upload failed")

	ErrInvalidMetadata = errors.New("invalid token metadata")
)

// TokenMetadata is the off-chain JSON document referenced by the on-chain
// metadata URI.
type TokenMetadata struct {
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	Image                string `json:"image"`
	Description          string `json:"description,omitempty"`
	SellerFeeBasisPoints uint16 `json:"seller_fee_basis_points"`
	Decimals             uint8  `json:"decimals"`
	TotalSupply          string `json:"totalSupply"`
}

func (m *TokenMetadata) Validate() error {
	if m == nil {
		return errors.Wrap(ErrInvalidMetadata, "nil metadata")
	}

	// The URI is validated once it's known.
	onChain := m.WithURI("pending")
	if err := onChain.Validate(); err != nil {
		return errors.Wrap(ErrInvalidMetadata, err.Error())
	}
	return nil
}

// Marshal returns the JSON document that gets uploaded.
func (m *TokenMetadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// WithURI returns the on-chain metadata for a published document. m is not
// modified.
func (m TokenMetadata) WithURI(uri string) metadata.Data {
	return metadata.Data{
		Name:                 m.Name,
		Symbol:               m.Symbol,
		URI:                  uri,
		SellerFeeBasisPoints: m.SellerFeeBasisPoints,
	}
}

// Publisher uploads token metadata and returns the URI it's reachable at.
type Publisher interface {
	Publish(ctx context.Context, m *TokenMetadata) (uri string, err error)
}

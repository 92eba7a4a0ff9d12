package metadata

import (
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/solana"
)

// ProgramKey is the Metaplex token metadata program.
//
// Current key: metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s
var ProgramKey ed25519.PublicKey

var metadataPrefix = []byte("metadata")

// Limits enforced by the token metadata program.
//
// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/v1.13.2/programs/token-metadata/program/src/state/mod.rs#L41-L52
const (
	MaxNameLength            = 32
	MaxSymbolLength          = 10
	MaxURILength             = 200
	MaxSellerFeeBasisPoints  = 10_000
	commandCreateMetadataV3  = 33
	createMetadataV3Accounts = 6
)

var ErrInvalidData = errors.New("invalid metadata")

func init() {
	var err error

	ProgramKey, err = base58.Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	if err != nil {
		panic(err)
	}
}

// GetMetadataAddress returns the metadata account address of a mint.
func GetMetadataAddress(mint ed25519.PublicKey) (ed25519.PublicKey, error) {
	return solana.FindProgramAddress(
		ProgramKey,
		metadataPrefix,
		ProgramKey,
		mint,
	)
}

// Data is the on-chain metadata of a fungible token. Creators, collection
// and uses are always unset.
type Data struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
}

func (d Data) Validate() error {
	if len(d.Name) == 0 || len(d.Name) > MaxNameLength {
		return errors.Wrapf(ErrInvalidData, "name must be 1-%d bytes", MaxNameLength)
	}
	if len(d.Symbol) > MaxSymbolLength {
		return errors.Wrapf(ErrInvalidData, "symbol must be at most %d bytes", MaxSymbolLength)
	}
	if len(d.URI) == 0 || len(d.URI) > MaxURILength {
		return errors.Wrapf(ErrInvalidData, "uri must be 1-%d bytes", MaxURILength)
	}
	if !utf8.ValidString(d.Name) || !utf8.ValidString(d.Symbol) || !utf8.ValidString(d.URI) {
		return errors.Wrap(ErrInvalidData, "fields must be valid utf-8")
	}
	if d.SellerFeeBasisPoints > MaxSellerFeeBasisPoints {
		return errors.Wrapf(ErrInvalidData, "seller fee basis points must be at most %d", MaxSellerFeeBasisPoints)
	}
	return nil
}

type CreateMetadataAccountV3InstructionAccounts struct {
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

type CreateMetadataAccountV3InstructionArgs struct {
	Data      Data
	IsMutable bool
}

// NewCreateMetadataAccountV3Instruction creates the metadata account for a
// mint with no collection details. The update authority co-signs.
//
// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/v1.13.2/programs/token-metadata/program/src/instruction/metadata.rs#L145-L158
func NewCreateMetadataAccountV3Instruction(
	accounts *CreateMetadataAccountV3InstructionAccounts,
	args *CreateMetadataAccountV3InstructionArgs,
) (solana.Instruction, error) {
	if err := args.Data.Validate(); err != nil {
		return solana.Instruction{}, err
	}

	// Borsh encoding is delegated to the SDK. The result is converted back
	// into our instruction type so it compiles with the rest of the message.
	sdkInstruction := token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                common.PublicKeyFromBytes(accounts.Metadata),
		Mint:                    common.PublicKeyFromBytes(accounts.Mint),
		MintAuthority:           common.PublicKeyFromBytes(accounts.MintAuthority),
		Payer:                   common.PublicKeyFromBytes(accounts.Payer),
		UpdateAuthority:         common.PublicKeyFromBytes(accounts.UpdateAuthority),
		UpdateAuthorityIsSigner: true,
		IsMutable:               args.IsMutable,
		Data: token_metadata.DataV2{
			Name:                 args.Data.Name,
			Symbol:               args.Data.Symbol,
			Uri:                  args.Data.URI,
			SellerFeeBasisPoints: args.Data.SellerFeeBasisPoints,
		},
		CollectionDetails: nil,
	})

	return fromSDKInstruction(sdkInstruction), nil
}

func fromSDKInstruction(in types.Instruction) solana.Instruction {
	accounts := make([]solana.AccountMeta, len(in.Accounts))
	for i, a := range in.Accounts {
		pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
		copy(pub, a.PubKey.Bytes())

		accounts[i] = solana.AccountMeta{
			PublicKey:  pub,
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}

	program := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(program, in.ProgramID.Bytes())

	return solana.NewInstruction(program, in.Data, accounts...)
}

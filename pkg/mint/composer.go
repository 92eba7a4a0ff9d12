package mint

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/solana"
	"github.com/code-payments/code-minter/pkg/solana/metadata"
	"github.com/code-payments/code-minter/pkg/solana/system"
	"github.com/code-payments/code-minter/pkg/solana/token"
)

// InstructionCount is the number of instructions in a mint transaction.
const InstructionCount = 5

// Composer builds the instructions that create and fund a new token.
type Composer struct {
	client solana.Client
}

func NewComposer(client solana.Client) *Composer {
	return &Composer{
		client: client,
	}
}

// Compose returns, in order: create the mint account, initialize the mint,
// create the destination owner's associated token account, mint the supply
// into it and create the metadata account. Every input is checked before the
// rent exemption is fetched.
func (c *Composer) Compose(
	params *TokenParameters,
	data *metadata.Data,
	payer ed25519.PublicKey,
	mint ed25519.PublicKey,
	destinationOwner ed25519.PublicKey,
	mintAuthority ed25519.PublicKey,
) ([]solana.Instruction, error) {
	if params == nil {
		return nil, errors.Wrap(ErrInvalidParameters, "token parameters are missing")
	}
	if data == nil {
		return nil, errors.Wrap(ErrInvalidParameters, "metadata is missing")
	}
	if err := data.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidParameters, err.Error())
	}
	for _, account := range []struct {
		name string
		key  ed25519.PublicKey
	}{
		{"payer", payer},
		{"mint", mint},
		{"destination owner", destinationOwner},
		{"mint authority", mintAuthority},
	} {
		if len(account.key) != ed25519.PublicKeySize {
			return nil, errors.Wrapf(ErrInvalidParameters, "%s is missing or malformed", account.name)
		}
	}

	amount, err := SupplyBaseUnits(params.TotalSupply, params.Decimals)
	if err != nil {
		return nil, err
	}

	metadataAddress, err := metadata.GetMetadataAddress(mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive metadata address")
	}

	createAta, ata, err := token.CreateAssociatedTokenAccount(payer, destinationOwner, mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive associated token account")
	}

	createMetadata, err := metadata.NewCreateMetadataAccountV3Instruction(
		&metadata.CreateMetadataAccountV3InstructionAccounts{
			Metadata:        metadataAddress,
			Mint:            mint,
			MintAuthority:   mintAuthority,
			Payer:           payer,
			UpdateAuthority: mintAuthority,
		},
		&metadata.CreateMetadataAccountV3InstructionArgs{
			Data:      *data,
			IsMutable: true,
		},
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidParameters, err.Error())
	}

	rent, err := c.client.GetMinimumBalanceForRentExemption(token.MintAccountSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get mint rent exemption")
	}

	return []solana.Instruction{
		system.CreateAccount(payer, mint, token.ProgramKey, rent, token.MintAccountSize),
		token.InitializeMint(mint, mintAuthority, nil, params.Decimals),
		createAta,
		token.MintTo(mint, ata, mintAuthority, amount),
		createMetadata,
	}, nil
}

// Assemble compiles the mint instructions into a transaction paid for by
// payer and bound to blockhash.
func Assemble(instructions []solana.Instruction, payer ed25519.PublicKey, blockhash solana.Blockhash) (solana.Transaction, error) {
	if len(instructions) != InstructionCount {
		return solana.Transaction{}, errors.Wrapf(ErrInvalidParameters, "expected %d instructions, got %d", InstructionCount, len(instructions))
	}
	if len(payer) != ed25519.PublicKeySize {
		return solana.Transaction{}, errors.Wrap(ErrInvalidParameters, "payer is missing or malformed")
	}

	txn := solana.NewTransaction(payer, instructions...)
	txn.SetBlockhash(blockhash)
	return txn, nil
}

// Sign signs txn with each key. Keys that are not required signers are an
// error, missing signers are not.
func Sign(txn *solana.Transaction, keys ...ed25519.PrivateKey) error {
	return txn.Sign(keys...)
}

package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrNoValidBump           = errors.New("unable to find a viable program address bump seed")

	ErrInvalidPublicKey = errors.New("invalid public key")
)

var pdaMarker = []byte("ProgramDerivedAddress")

// CreateProgramAddress derives a program address from the program id and
// seeds. ErrInvalidPublicKey is returned when the hash lands on the ed25519
// curve, since such an address could have a private key.
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	var preimage []byte
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		preimage = append(preimage, seed...)
	}
	preimage = append(preimage, program...)
	preimage = append(preimage, pdaMarker...)

	pub := sha256.Sum256(preimage)

	// golang.org/x/crypto keeps its point type internal, so the curve check
	// goes through the edwards25519 decompression used by ed25519.Verify.
	var point edwards25519.ExtendedGroupElement
	if point.FromBytes(&pub) {
		return nil, ErrInvalidPublicKey
	}
	return pub[:], nil
}

// FindProgramAddressAndBump tries bump seeds from 255 down to 1 and returns
// the first off-curve address with its bump.
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}

		pub, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return pub, uint8(bump), nil
		case ErrInvalidPublicKey:
			continue
		default:
			return nil, 0, err
		}
	}
	return nil, 0, ErrNoValidBump
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}

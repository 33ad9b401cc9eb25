package crypto

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestProposalDigestBindsAllFields(t *testing.T) {
	signer := common.HexToAddress("0x1111111111111111111111111111111111111111")
	other := common.HexToAddress("0x2222222222222222222222222222222222222222")

	base := ProposalDigest("set_min_bond", 10, signer)

	require.Equal(t, base, ProposalDigest("set_min_bond", 10, signer))
	require.NotEqual(t, base, ProposalDigest("set_bond_bps", 10, signer))
	require.NotEqual(t, base, ProposalDigest("set_min_bond", 11, signer))
	require.NotEqual(t, base, ProposalDigest("set_min_bond", 10, other))
}

func TestConfirmationDigestDiffersFromProposal(t *testing.T) {
	signer := common.HexToAddress("0x1111111111111111111111111111111111111111")

	confirm := ConfirmationDigest("action-1", signer)
	require.Equal(t, confirm, ConfirmationDigest("action-1", signer))
	require.NotEqual(t, confirm, ConfirmationDigest("action-2", signer))

	// A proposal digest over colliding bytes must not equal a confirmation
	// digest thanks to the domain prefixes.
	require.NotEqual(t, confirm, ProposalDigest("action-1", 0, signer))
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	signer := ethcrypto.PubkeyToAddress(key.PublicKey)

	digest := ProposalDigest("set_resolution_fee", 2_000_000, signer)
	sig, err := SignDigest(digest, key)
	require.NoError(t, err)
	require.Len(t, sig, 65)

	require.NoError(t, VerifyDigest(digest, sig, signer))
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	signer := ethcrypto.PubkeyToAddress(key.PublicKey)
	other := common.HexToAddress("0x3333333333333333333333333333333333333333")

	digest := ConfirmationDigest("action-1", signer)
	sig, err := SignDigest(digest, key)
	require.NoError(t, err)

	require.Error(t, VerifyDigest(digest, sig, other))
}

func TestVerifyRejectsWrongDigest(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	signer := ethcrypto.PubkeyToAddress(key.PublicKey)

	sig, err := SignDigest(ConfirmationDigest("action-1", signer), key)
	require.NoError(t, err)

	require.Error(t, VerifyDigest(ConfirmationDigest("action-2", signer), sig, signer))
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	signer := common.HexToAddress("0x1111111111111111111111111111111111111111")
	digest := ConfirmationDigest("action-1", signer)

	require.Error(t, VerifyDigest(digest, nil, signer))
	require.Error(t, VerifyDigest(digest, make([]byte, 64), signer))
}

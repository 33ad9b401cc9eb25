package crypto

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Governance messages are signed over keccak256 digests with a fixed
// domain prefix so a signature can never be replayed against a different
// message class.
const (
	proposalPrefix     = "jnglz.gov.propose.v1"
	confirmationPrefix = "jnglz.gov.confirm.v1"
)

// ProposalDigest is the digest a committee member signs to propose a
// parameter change of the given type and value.
func ProposalDigest(actionType string, value int64, signer common.Address) common.Hash {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(value))
	return common.BytesToHash(ethcrypto.Keccak256(
		[]byte(proposalPrefix),
		[]byte(actionType),
		v[:],
		signer.Bytes(),
	))
}

// ConfirmationDigest is the digest a committee member signs to confirm an
// existing action.
func ConfirmationDigest(actionID string, signer common.Address) common.Hash {
	return common.BytesToHash(ethcrypto.Keccak256(
		[]byte(confirmationPrefix),
		[]byte(actionID),
		signer.Bytes(),
	))
}

// SignDigest produces a 65-byte [R || S || V] secp256k1 signature over the
// digest.
func SignDigest(digest common.Hash, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := ethcrypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("crypto: sign digest: %w", err)
	}
	return sig, nil
}

// VerifyDigest recovers the public key from the signature and checks that
// it belongs to the expected signer.
func VerifyDigest(digest common.Hash, sig []byte, signer common.Address) error {
	if len(sig) != 65 {
		return fmt.Errorf("crypto: signature must be 65 bytes, got %d", len(sig))
	}
	pub, err := ethcrypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return fmt.Errorf("crypto: recover public key: %w", err)
	}
	if ethcrypto.PubkeyToAddress(*pub) != signer {
		return fmt.Errorf("crypto: signature not from %s", signer.Hex())
	}
	return nil
}

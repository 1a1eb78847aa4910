package stark

import (
	"fmt"
	"math/big"

	"github.com/NethermindEth/starknet.go/curve"
)

// Sign: ECDSA на кривой Stark.
func (k *KeyPair) Sign(msgHash *big.Int) (r, s *big.Int, err error) {
	r, s, err = curve.Curve.Sign(msgHash, k.Private)
	if err != nil {
		return nil, nil, fmt.Errorf("stark sign: %w", err)
	}
	return r, s, nil
}

func (k *KeyPair) Verify(msgHash, r, s *big.Int) bool {
	return curve.Curve.Verify(msgHash, r, s, k.Public, k.publicY)
}

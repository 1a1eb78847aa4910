package stark

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/NethermindEth/starknet.go/curve"
)

var ErrInvalidSignatureFormat = errors.New("invalid eth signature format")

var (
	// EcOrder: порядок группы точек кривой Stark.
	EcOrder = mustHex("0800000000000010ffffffffffffffffb781126dcae7b2321e66a241adc64d2f")
	// FieldPrime: 2^251 + 17*2^192 + 1.
	FieldPrime = mustHex("0800000000000011000000000000000000000000000000000000000000000001")

	two256 = new(big.Int).Lsh(big.NewInt(1), 256)
)

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("stark: bad hex constant " + s)
	}
	return v
}

type KeyPair struct {
	Private *big.Int
	Public  *big.Int
	// y публичной точки, нужен только для проверки подписи
	publicY *big.Int
}

func (k *KeyPair) PrivateHex() string { return ToHex(k.Private) }
func (k *KeyPair) PublicHex() string  { return ToHex(k.Public) }

// KeyPairFromEthSignature выводит L2 ключ из 65-байтовой подписи кошелька.
// Сид: r подписи, дальше key grinding до равномерного значения по модулю EcOrder.
func KeyPairFromEthSignature(sig string) (*KeyPair, error) {
	raw := strings.TrimSpace(sig)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")

	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureFormat, err)
	}
	if len(b) != 65 {
		return nil, fmt.Errorf("%w: expected 65 bytes, got %d", ErrInvalidSignatureFormat, len(b))
	}

	seed := new(big.Int).SetBytes(b[:32])
	return KeyPairFromPrivate(grindKey(seed))
}

// KeyPairFromPrivate восстанавливает публичную часть по приватному ключу.
func KeyPairFromPrivate(priv *big.Int) (*KeyPair, error) {
	if priv == nil || priv.Sign() <= 0 || priv.Cmp(EcOrder) >= 0 {
		return nil, errors.New("stark: private key out of range")
	}
	x, y, err := curve.Curve.PrivateToPoint(priv)
	if err != nil {
		return nil, fmt.Errorf("stark: private to point: %w", err)
	}
	return &KeyPair{Private: new(big.Int).Set(priv), Public: x, publicY: y}, nil
}

func grindKey(seed *big.Int) *big.Int {
	limit := new(big.Int).Sub(two256, new(big.Int).Mod(two256, EcOrder))
	seedBytes := minimalBytes(seed)

	for i := int64(0); ; i++ {
		buf := append(append([]byte{}, seedBytes...), minimalBytes(big.NewInt(i))...)
		sum := sha256.Sum256(buf)
		k := new(big.Int).SetBytes(sum[:])
		if k.Cmp(limit) < 0 {
			return k.Mod(k, EcOrder)
		}
	}
}

// minimalBytes: big-endian без ведущих нулей, ноль кодируется одним байтом 0x00.
func minimalBytes(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) == 0 {
		return []byte{0}
	}
	return b
}

package stark

import (
	"fmt"
	"math/big"
	"strings"

	junocrypto "github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/curve"
	"github.com/ethereum/go-ethereum/crypto"
)

var mask250 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

func toFelt(v *big.Int) *felt.Felt {
	return new(felt.Felt).SetBigInt(ToField(v))
}

func fromFelt(f *felt.Felt) *big.Int {
	return f.BigInt(new(big.Int))
}

// ToField приводит значение в поле, отрицательные суммы уходят в p - |x|.
func ToField(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, FieldPrime)
}

func Pedersen(a, b *big.Int) *big.Int {
	return fromFelt(curve.Pedersen(toFelt(a), toFelt(b)))
}

// PoseidonArray: poseidon_hash_many, хеш typed data ревизии 1.
func PoseidonArray(elems ...*big.Int) *big.Int {
	fs := make([]*felt.Felt, len(elems))
	for i, e := range elems {
		fs[i] = toFelt(e)
	}
	return fromFelt(junocrypto.PoseidonArray(fs...))
}

// Selector: starknet keccak: keccak256 с обрезкой до 250 бит.
func Selector(name string) *big.Int {
	h := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	return h.And(h, mask250)
}

// ShortString кодирует ascii строку до 31 символа в один элемент поля.
func ShortString(s string) (*big.Int, error) {
	if len(s) > 31 {
		return nil, fmt.Errorf("stark: short string too long: %q", s)
	}
	return new(big.Int).SetBytes([]byte(s)), nil
}

// ParseHex разбирает "0x..." (или без префикса) в число.
func ParseHex(s string) (*big.Int, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if raw == "" {
		return nil, fmt.Errorf("stark: empty hex")
	}
	v, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return nil, fmt.Errorf("stark: bad hex %q", s)
	}
	return v, nil
}

func ToHex(v *big.Int) string {
	return "0x" + v.Text(16)
}

package ethsig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrBadSignature = errors.New("malformed ethereum signature")

// Normalize добавляет 0x, если нет ни 0x, ни 0X.
func Normalize(sig string) string {
	sig = strings.TrimSpace(sig)
	if strings.HasPrefix(sig, "0x") || strings.HasPrefix(sig, "0X") {
		return sig
	}
	return "0x" + sig
}

// Decode: 65 байт r||s||v.
func Decode(sig string) ([]byte, error) {
	b, err := hexutil.Decode(Normalize(sig))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if len(b) != crypto.SignatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrBadSignature, crypto.SignatureLength, len(b))
	}
	return b, nil
}

// Recover: адрес по хешу и подписи. v принимается и как 0/1, и как 27/28.
func Recover(digest []byte, signature string) (common.Address, error) {
	sig, err := Decode(signature)
	if err != nil {
		return common.Address{}, err
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// RecoverPersonal: для personal_sign (префикс "\x19Ethereum Signed Message:\n<len>").
func RecoverPersonal(message, signature string) (common.Address, error) {
	return Recover(accounts.TextHash([]byte(message)), signature)
}

// SameAddress сравнивает адреса без учёта регистра/чексуммы.
func SameAddress(a common.Address, wallet string) bool {
	return common.IsHexAddress(wallet) && a == common.HexToAddress(wallet)
}

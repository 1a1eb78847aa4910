package service

import (
	"fmt"
	"strings"
	"time"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/ethsig"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	RegistrationTimeLayout = "2006-01-02T15:04:05Z"

	typeDomain       = "EIP712Domain"
	typeCreation     = "AccountCreation"
	typeRegistration = "AccountRegistration"
	actionRegister   = "REGISTER"
)

var (
	domainFields = []models.TypedField{{Name: "name", Type: "string"}}

	creationFields = []models.TypedField{
		{Name: "accountIndex", Type: "int8"},
		{Name: "wallet", Type: "address"},
		{Name: "tosAccepted", Type: "bool"},
	}

	registrationFields = append(append([]models.TypedField{}, creationFields...),
		models.TypedField{Name: "time", Type: "string"},
		models.TypedField{Name: "action", Type: "string"},
		models.TypedField{Name: "host", Type: "string"},
	)
)

// TypedDataBuilder собирает EIP-712 сообщения AccountCreation и AccountRegistration.
type TypedDataBuilder struct {
	signingDomain string
	host          string
	now           func() time.Time
}

func NewTypedDataBuilder(signingDomain, host string, now func() time.Time) *TypedDataBuilder {
	if now == nil {
		now = time.Now
	}
	return &TypedDataBuilder{signingDomain: signingDomain, host: host, now: now}
}

func ValidateAccount(wallet string, index int64) error {
	if !common.IsHexAddress(wallet) {
		return fmt.Errorf("invalid wallet address %q", wallet)
	}
	if index < 0 || index > 127 {
		return fmt.Errorf("account index %d out of int8 range", index)
	}
	return nil
}

func (b *TypedDataBuilder) domain() map[string]any {
	return map[string]any{"name": b.signingDomain}
}

// AccountCreation: сообщение, из подписи которого выводится L2 ключ. Времени в нём нет.
func (b *TypedDataBuilder) AccountCreation(wallet string, index int64) models.TypedMessage {
	return models.TypedMessage{
		Types: map[string][]models.TypedField{
			typeDomain:   domainFields,
			typeCreation: creationFields,
		},
		Domain:      b.domain(),
		PrimaryType: typeCreation,
		Message: map[string]any{
			"accountIndex": index,
			"wallet":       wallet,
			"tosAccepted":  true,
		},
	}
}

// AccountRegistration: сообщение, подпись которого уходит в /auth/onboard как l1Signature.
func (b *TypedDataBuilder) AccountRegistration(wallet string, index int64, regTime, host string) models.TypedMessage {
	return models.TypedMessage{
		Types: map[string][]models.TypedField{
			typeDomain:       domainFields,
			typeRegistration: registrationFields,
		},
		Domain:      b.domain(),
		PrimaryType: typeRegistration,
		Message: map[string]any{
			"accountIndex": index,
			"wallet":       wallet,
			"tosAccepted":  true,
			"time":         regTime,
			"action":       actionRegister,
			"host":         host,
		},
	}
}

// Build: оба сообщения для кошелька. Время регистрации с точностью до секунды, UTC.
func (b *TypedDataBuilder) Build(wallet string, index int64) (*models.OnboardingStartResponse, error) {
	if err := ValidateAccount(wallet, index); err != nil {
		return nil, err
	}
	now := b.now().UTC()
	regTime := now.Format(RegistrationTimeLayout)

	return &models.OnboardingStartResponse{
		TypedData:             b.AccountCreation(wallet, index),
		RegistrationTypedData: b.AccountRegistration(wallet, index, regTime, b.host),
		CreationIssuedAt:      now.Format(time.RFC3339Nano),
		RegistrationTime:      regTime,
		RegistrationHost:      b.host,
	}, nil
}

func toAPITypes(msg models.TypedMessage) apitypes.TypedData {
	types := apitypes.Types{}
	for name, fields := range msg.Types {
		for _, f := range fields {
			types[name] = append(types[name], apitypes.Type{Name: f.Name, Type: f.Type})
		}
	}

	domain := apitypes.TypedDataDomain{}
	if name, ok := msg.Domain["name"].(string); ok {
		domain.Name = name
	}

	message := apitypes.TypedDataMessage{}
	for k, v := range msg.Message {
		message[k] = v
	}
	// целые apitypes принимает только как *big.Int / HexOrDecimal256 / строку
	for _, f := range msg.Types[msg.PrimaryType] {
		if !strings.HasPrefix(f.Type, "int") && !strings.HasPrefix(f.Type, "uint") {
			continue
		}
		switch v := message[f.Name].(type) {
		case int64:
			message[f.Name] = math.NewHexOrDecimal256(v)
		case int:
			message[f.Name] = math.NewHexOrDecimal256(int64(v))
		}
	}

	return apitypes.TypedData{
		Types:       types,
		PrimaryType: msg.PrimaryType,
		Domain:      domain,
		Message:     message,
	}
}

// Digest: keccak256(0x1901 || domainSeparator || hashStruct(message)).
func Digest(msg models.TypedMessage) ([]byte, error) {
	td := toAPITypes(msg)

	domainSeparator, err := td.HashStruct(typeDomain, td.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("hash domain: %w", err)
	}
	typedDataHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, fmt.Errorf("hash message: %w", err)
	}

	raw := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	return crypto.Keccak256Hash(raw).Bytes(), nil
}

// RecoverSigner: адрес, подписавший msg подписью eth_signTypedData_v4.
func RecoverSigner(msg models.TypedMessage, signature string) (common.Address, error) {
	digest, err := Digest(msg)
	if err != nil {
		return common.Address{}, err
	}
	return ethsig.Recover(digest, signature)
}

// VerifySignature проверяет, что msg подписан кошельком wallet.
func VerifySignature(msg models.TypedMessage, signature, wallet string) error {
	signer, err := RecoverSigner(msg, signature)
	if err != nil {
		return err
	}
	if !ethsig.SameAddress(signer, wallet) {
		return fmt.Errorf("signature by %s, expected %s", signer.Hex(), wallet)
	}
	return nil
}

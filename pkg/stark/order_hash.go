package stark

import (
	"fmt"
	"math/big"
	"time"
)

// SettlementBuffer добавляется к сроку жизни ордера при подписи.
const SettlementBuffer = 14 * 24 * time.Hour

const (
	domainTypeString = `"StarknetDomain"("name":"shortstring","version":"shortstring","chainId":"shortstring","revision":"shortstring")`
	orderTypeString  = `"Order"("position_id":"felt","base_asset_id":"AssetId","base_amount":"i64","quote_asset_id":"AssetId","quote_amount":"i64","fee_asset_id":"AssetId","fee_amount":"u64","expiration":"Timestamp","salt":"felt")` +
		`"PositionId"("value":"u32")"AssetId"("value":"felt")"Timestamp"("seconds":"u64")`
	messagePrefix = "StarkNet Message"
)

var (
	domainTypeHash = Selector(domainTypeString)
	orderTypeHash  = Selector(orderTypeString)
)

type Domain struct {
	Name     string
	Version  string
	ChainID  string
	Revision int64
}

// PerpetualsDomain: домен подписи ордеров для сети chainID (SN_MAIN, SN_SEPOLIA).
func PerpetualsDomain(chainID string) Domain {
	return Domain{Name: "Perpetuals", Version: "v0", ChainID: chainID, Revision: 1}
}

func (d Domain) Hash() (*big.Int, error) {
	name, err := ShortString(d.Name)
	if err != nil {
		return nil, err
	}
	version, err := ShortString(d.Version)
	if err != nil {
		return nil, err
	}
	chain, err := ShortString(d.ChainID)
	if err != nil {
		return nil, err
	}
	return PoseidonArray(domainTypeHash, name, version, chain, big.NewInt(d.Revision)), nil
}

// OrderParams: поля ордера в единицах L2. Суммы со знаком.
type OrderParams struct {
	PositionID       int64
	SyntheticID      *big.Int
	SyntheticAmount  *big.Int
	CollateralID     *big.Int
	CollateralAmount *big.Int
	FeeID            *big.Int
	FeeAmount        *big.Int
	ExpirationSec    int64
	Salt             int64
}

func (o OrderParams) structHash() *big.Int {
	return PoseidonArray(
		orderTypeHash,
		big.NewInt(o.PositionID),
		o.SyntheticID,
		o.SyntheticAmount,
		o.CollateralID,
		o.CollateralAmount,
		o.FeeID,
		o.FeeAmount,
		big.NewInt(o.ExpirationSec),
		big.NewInt(o.Salt),
	)
}

// OrderMessageHash: хеш, который подписывается ключом аккаунта publicKey.
// Отрицательные суммы уходят в поле через ToField.
func OrderMessageHash(o OrderParams, d Domain, publicKey *big.Int) (*big.Int, error) {
	if o.SyntheticID == nil || o.SyntheticAmount == nil || o.CollateralID == nil ||
		o.CollateralAmount == nil || o.FeeID == nil || o.FeeAmount == nil {
		return nil, fmt.Errorf("stark: incomplete order params")
	}
	domainHash, err := d.Hash()
	if err != nil {
		return nil, err
	}
	prefix, _ := ShortString(messagePrefix)
	return PoseidonArray(prefix, domainHash, publicKey, o.structHash()), nil
}

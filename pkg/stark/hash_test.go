package stark

import (
	"math/big"
	"testing"
)

func TestToFieldNegative(t *testing.T) {
	got := ToField(big.NewInt(-1))
	want := new(big.Int).Sub(FieldPrime, big.NewInt(1))
	if got.Cmp(want) != 0 {
		t.Fatalf("ToField(-1) = %s, want p-1", got)
	}
}

func TestSelectorFits250Bits(t *testing.T) {
	if Selector(orderTypeString).BitLen() > 250 {
		t.Fatalf("selector wider than 250 bits")
	}
	if Selector("a").Cmp(Selector("b")) == 0 {
		t.Fatalf("selectors collide")
	}
}

func TestShortString(t *testing.T) {
	v, err := ShortString("v0")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int64() != 0x7630 {
		t.Fatalf("v0 = %x", v)
	}
	if _, err := ShortString("this string is definitely longer than 31"); err == nil {
		t.Fatalf("long string accepted")
	}
}

func TestParseHex(t *testing.T) {
	v, err := ParseHex("0x1f")
	if err != nil || v.Int64() != 31 {
		t.Fatalf("0x1f: %v %v", v, err)
	}
	if _, err := ParseHex("0x"); err == nil {
		t.Fatalf("empty hex accepted")
	}
	if ToHex(big.NewInt(255)) != "0xff" {
		t.Fatalf("ToHex(255) = %s", ToHex(big.NewInt(255)))
	}
}

func testOrder(salt int64) OrderParams {
	return OrderParams{
		PositionID:       10002,
		SyntheticID:      mustHex("4254432d3600000000000000000000"),
		SyntheticAmount:  big.NewInt(-1000),
		CollateralID:     mustHex("31857064564ed0ff978e687456963cba09c2c6985d8f9300a1de4962fafa054"),
		CollateralAmount: big.NewInt(43445116),
		FeeID:            mustHex("31857064564ed0ff978e687456963cba09c2c6985d8f9300a1de4962fafa054"),
		FeeAmount:        big.NewInt(21723),
		ExpirationSec:    1706836137,
		Salt:             salt,
	}
}

func TestOrderMessageHash(t *testing.T) {
	pub, _ := ParseHex("0x61c5e7e8339b7d56f197f54ea91b776776690e3232313de0f2ecbd0ef76f466")
	d := PerpetualsDomain("SN_SEPOLIA")

	h1, err := OrderMessageHash(testOrder(1473459052), d, pub)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, _ := OrderMessageHash(testOrder(1473459052), d, pub)
	if h1.Cmp(h2) != 0 {
		t.Fatalf("hash not deterministic")
	}
	want, _ := new(big.Int).SetString("2969335148777495210033041829700798003994871688044444919524700744667647811801", 10)
	if h1.Cmp(want) != 0 {
		t.Fatalf("order hash = %s, want %s", h1, want)
	}

	h3, _ := OrderMessageHash(testOrder(1473459053), d, pub)
	if h1.Cmp(h3) == 0 {
		t.Fatalf("salt does not affect hash")
	}
	h4, _ := OrderMessageHash(testOrder(1473459052), PerpetualsDomain("SN_MAIN"), pub)
	if h1.Cmp(h4) == 0 {
		t.Fatalf("chain id does not affect hash")
	}

	bad := testOrder(1)
	bad.FeeID = nil
	if _, err := OrderMessageHash(bad, d, pub); err == nil {
		t.Fatalf("incomplete params accepted")
	}
}

func TestPoseidonArrayOrderMatters(t *testing.T) {
	a := PoseidonArray(big.NewInt(1), big.NewInt(2))
	b := PoseidonArray(big.NewInt(2), big.NewInt(1))
	if a.Cmp(b) == 0 {
		t.Fatalf("poseidon ignores element order")
	}
	if a.Cmp(PoseidonArray(big.NewInt(1), big.NewInt(2), big.NewInt(0))) == 0 {
		t.Fatalf("trailing zero ignored")
	}
}

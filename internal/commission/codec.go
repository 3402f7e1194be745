// Package commission encodes and decodes the optional fee trailer appended
// after a swap call's primary arguments. Keeping the trailer out of the typed
// request keeps the common no-fee call cheap.
package commission

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/domain"
)

// RateDenominator is the fixed-point denominator for commission rates.
const RateDenominator = 1_000_000_000

// maxTotalRate caps rate1+rate2 at 3% of the denominator.
const maxTotalRate = 30_000_000

const wordSize = 32

// Referrer-word flags, one per fee-tier encoding
// (single/dual referrer x source/destination side).
const (
	flagFromTokenSingle = 0x3ca20afc
	flagToTokenSingle   = 0x5fa171ea
	flagFromTokenDual   = 0x22220afc
	flagToTokenDual     = 0x5fa171fb
)

var ErrRateTooHigh = errors.New("commission rate exceeds limit")

// Spec is the decoded form of a commission trailer.
type Spec struct {
	Rate1     *uint256.Int
	Receiver1 common.Address

	// Second referrer, only meaningful when Dual is set.
	Rate2     *uint256.Int
	Receiver2 common.Address

	Dual bool

	// OnSource selects deduction from the input side before routing instead
	// of the output side after routing.
	OnSource bool

	IsBusiness bool

	// Token the commission is denominated in. The native sentinel marks a
	// native-asset commission.
	Token common.Address
}

func (s *Spec) IsNativeToken() bool {
	return domain.IsNative(s.Token)
}

// TotalRate returns rate1 + rate2 (rate2 counts only when dual).
func (s *Spec) TotalRate() *uint256.Int {
	total := s.Rate1.Clone()
	if s.Dual {
		total.Add(total, s.Rate2)
	}
	return total
}

// Amount computes floor(amount * rate / RateDenominator).
func Amount(amount, rate *uint256.Int) *uint256.Int {
	out := new(uint256.Int).Mul(amount, rate)
	return out.Div(out, uint256.NewInt(RateDenominator))
}

// Encode packs a spec into its trailer form: one word per referrer followed
// by the token word. Dual trailers put the second referrer word first so the
// total length discriminates the two shapes.
func Encode(s *Spec) []byte {
	flag := referrerFlag(s.Dual, s.OnSource)

	var out []byte
	if s.Dual {
		out = append(out, packReferrerWord(flag, s.Rate2, s.Receiver2)...)
	}
	out = append(out, packReferrerWord(flag, s.Rate1, s.Receiver1)...)
	out = append(out, packTokenWord(s.IsBusiness, s.Token)...)
	return out
}

// Decode parses a trailer. The second return is false when the bytes do not
// carry a commission trailer at all (absent, wrong length, or foreign flag);
// an error means a present trailer violates the rate bounds.
func Decode(trailer []byte) (*Spec, bool, error) {
	var spec *Spec
	switch len(trailer) {
	case 2 * wordSize:
		spec = decodeSingle(trailer)
	case 3 * wordSize:
		spec = decodeDual(trailer)
	default:
		return nil, false, nil
	}
	if spec == nil {
		return nil, false, nil
	}

	if spec.TotalRate().Cmp(uint256.NewInt(maxTotalRate)) >= 0 {
		return nil, false, ErrRateTooHigh
	}
	return spec, true, nil
}

func decodeSingle(trailer []byte) *Spec {
	flag, rate, receiver := unpackReferrerWord(trailer[:wordSize])
	if flag != flagFromTokenSingle && flag != flagToTokenSingle {
		return nil
	}
	business, token := unpackTokenWord(trailer[wordSize:])
	return &Spec{
		Rate1:      rate,
		Receiver1:  receiver,
		Rate2:      uint256.NewInt(0),
		OnSource:   flag == flagFromTokenSingle,
		IsBusiness: business,
		Token:      token,
	}
}

func decodeDual(trailer []byte) *Spec {
	flag2, rate2, receiver2 := unpackReferrerWord(trailer[:wordSize])
	flag1, rate1, receiver1 := unpackReferrerWord(trailer[wordSize : 2*wordSize])
	if flag1 != flagFromTokenDual && flag1 != flagToTokenDual {
		return nil
	}
	// Both referrer words must agree on the tier encoding.
	if flag2 != flag1 {
		return nil
	}
	business, token := unpackTokenWord(trailer[2*wordSize:])
	return &Spec{
		Rate1:      rate1,
		Receiver1:  receiver1,
		Rate2:      rate2,
		Receiver2:  receiver2,
		Dual:       true,
		OnSource:   flag1 == flagFromTokenDual,
		IsBusiness: business,
		Token:      token,
	}
}

func referrerFlag(dual, onSource bool) uint64 {
	switch {
	case dual && onSource:
		return flagFromTokenDual
	case dual:
		return flagToTokenDual
	case onSource:
		return flagFromTokenSingle
	default:
		return flagToTokenSingle
	}
}

// packReferrerWord lays out flag<<224 | rate<<160 | receiver.
func packReferrerWord(flag uint64, rate *uint256.Int, receiver common.Address) []byte {
	word := new(uint256.Int).Lsh(uint256.NewInt(flag), 224)
	word.Or(word, new(uint256.Int).Lsh(rate, 160))
	word.Or(word, new(uint256.Int).SetBytes(receiver.Bytes()))
	b := word.Bytes32()
	return b[:]
}

func unpackReferrerWord(b []byte) (flag uint64, rate *uint256.Int, receiver common.Address) {
	word := new(uint256.Int).SetBytes(b)
	flag = new(uint256.Int).Rsh(word, 224).Uint64()
	rate = new(uint256.Int).Rsh(word, 160)
	rate.And(rate, uint256.NewInt(0xffffffffffffffff))
	receiver = common.BytesToAddress(b[12:32])
	return flag, rate, receiver
}

// packTokenWord lays out businessFlag<<255 | token, middle bits reserved.
func packTokenWord(business bool, token common.Address) []byte {
	word := new(uint256.Int).SetBytes(token.Bytes())
	if business {
		word.Or(word, new(uint256.Int).Lsh(uint256.NewInt(1), 255))
	}
	b := word.Bytes32()
	return b[:]
}

func unpackTokenWord(b []byte) (business bool, token common.Address) {
	word := new(uint256.Int).SetBytes(b)
	business = new(uint256.Int).Rsh(word, 255).Uint64() == 1
	token = common.BytesToAddress(b[12:32])
	return business, token
}

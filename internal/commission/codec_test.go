package commission

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/okx/WEB3-DEX/internal/domain"
)

var (
	receiver1 = common.HexToAddress("0x0000000000000000000000000000000000000201")
	receiver2 = common.HexToAddress("0x0000000000000000000000000000000000000202")
	feeToken  = common.HexToAddress("0x00000000000000000000000000000000000000f1")
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		spec *Spec
	}{
		{
			name: "single source side",
			spec: &Spec{
				Rate1:     uint256.NewInt(1_000_000),
				Receiver1: receiver1,
				Rate2:     uint256.NewInt(0),
				OnSource:  true,
				Token:     feeToken,
			},
		},
		{
			name: "single dest side business",
			spec: &Spec{
				Rate1:      uint256.NewInt(5_000_000),
				Receiver1:  receiver1,
				Rate2:      uint256.NewInt(0),
				IsBusiness: true,
				Token:      feeToken,
			},
		},
		{
			name: "dual source side",
			spec: &Spec{
				Rate1:     uint256.NewInt(2_000_000),
				Receiver1: receiver1,
				Rate2:     uint256.NewInt(3_000_000),
				Receiver2: receiver2,
				Dual:      true,
				OnSource:  true,
				Token:     feeToken,
			},
		},
		{
			name: "dual dest side native token",
			spec: &Spec{
				Rate1:     uint256.NewInt(10_000_000),
				Receiver1: receiver1,
				Rate2:     uint256.NewInt(19_999_999),
				Receiver2: receiver2,
				Dual:      true,
				Token:     domain.NativeToken,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trailer := Encode(tc.spec)

			wantLen := 2 * wordSize
			if tc.spec.Dual {
				wantLen = 3 * wordSize
			}
			if len(trailer) != wantLen {
				t.Fatalf("trailer length = %d, want %d", len(trailer), wantLen)
			}

			got, ok, err := Decode(trailer)
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if !ok {
				t.Fatal("decode did not recognize an encoded trailer")
			}

			if !got.Rate1.Eq(tc.spec.Rate1) {
				t.Errorf("rate1 = %s, want %s", got.Rate1.Dec(), tc.spec.Rate1.Dec())
			}
			if got.Receiver1 != tc.spec.Receiver1 {
				t.Errorf("receiver1 = %s, want %s", got.Receiver1.Hex(), tc.spec.Receiver1.Hex())
			}
			if got.Dual != tc.spec.Dual {
				t.Errorf("dual = %v, want %v", got.Dual, tc.spec.Dual)
			}
			if got.Dual {
				if !got.Rate2.Eq(tc.spec.Rate2) {
					t.Errorf("rate2 = %s, want %s", got.Rate2.Dec(), tc.spec.Rate2.Dec())
				}
				if got.Receiver2 != tc.spec.Receiver2 {
					t.Errorf("receiver2 = %s, want %s", got.Receiver2.Hex(), tc.spec.Receiver2.Hex())
				}
			}
			if got.OnSource != tc.spec.OnSource {
				t.Errorf("onSource = %v, want %v", got.OnSource, tc.spec.OnSource)
			}
			if got.IsBusiness != tc.spec.IsBusiness {
				t.Errorf("isBusiness = %v, want %v", got.IsBusiness, tc.spec.IsBusiness)
			}
			if got.Token != tc.spec.Token {
				t.Errorf("token = %s, want %s", got.Token.Hex(), tc.spec.Token.Hex())
			}
			if got.IsNativeToken() != domain.IsNative(tc.spec.Token) {
				t.Errorf("isNativeToken = %v", got.IsNativeToken())
			}
		})
	}
}

func TestDecodeNoTrailer(t *testing.T) {
	cases := []struct {
		name    string
		trailer []byte
	}{
		{"empty", nil},
		{"short", make([]byte, 31)},
		{"one word", make([]byte, 32)},
		{"between shapes", make([]byte, 80)},
		{"too long", make([]byte, 128)},
		{"right length wrong flag", make([]byte, 64)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec, ok, err := Decode(tc.trailer)
			if err != nil {
				t.Fatalf("decode errored: %v", err)
			}
			if ok || spec != nil {
				t.Fatalf("decode recognized garbage as a trailer")
			}
		})
	}
}

func TestDecodeMismatchedDualFlags(t *testing.T) {
	single := Encode(&Spec{
		Rate1:     uint256.NewInt(1_000_000),
		Receiver1: receiver1,
		Rate2:     uint256.NewInt(0),
		OnSource:  true,
		Token:     feeToken,
	})
	dual := Encode(&Spec{
		Rate1:     uint256.NewInt(1_000_000),
		Receiver1: receiver1,
		Rate2:     uint256.NewInt(1_000_000),
		Receiver2: receiver2,
		Dual:      true,
		OnSource:  true,
		Token:     feeToken,
	})

	// Splice a single-flag word in front of a dual trailer body.
	mixed := append(append([]byte{}, single[:wordSize]...), dual[wordSize:]...)
	spec, ok, err := Decode(mixed)
	if err != nil {
		t.Fatalf("decode errored: %v", err)
	}
	if ok || spec != nil {
		t.Fatal("decode accepted mismatched referrer flags")
	}
}

func TestDecodeRateCap(t *testing.T) {
	overLimit := Encode(&Spec{
		Rate1:     uint256.NewInt(15_000_000),
		Receiver1: receiver1,
		Rate2:     uint256.NewInt(15_000_000),
		Receiver2: receiver2,
		Dual:      true,
		Token:     feeToken,
	})
	if _, _, err := Decode(overLimit); !errors.Is(err, ErrRateTooHigh) {
		t.Fatalf("err = %v, want ErrRateTooHigh", err)
	}

	atLimit := Encode(&Spec{
		Rate1:     uint256.NewInt(maxTotalRate),
		Receiver1: receiver1,
		Rate2:     uint256.NewInt(0),
		Token:     feeToken,
	})
	if _, _, err := Decode(atLimit); !errors.Is(err, ErrRateTooHigh) {
		t.Fatalf("err at limit = %v, want ErrRateTooHigh", err)
	}

	underLimit := Encode(&Spec{
		Rate1:     uint256.NewInt(maxTotalRate - 1),
		Receiver1: receiver1,
		Rate2:     uint256.NewInt(0),
		Token:     feeToken,
	})
	if _, ok, err := Decode(underLimit); err != nil || !ok {
		t.Fatalf("decode under limit: ok=%v err=%v", ok, err)
	}
}

func TestAmount(t *testing.T) {
	cases := []struct {
		amount uint64
		rate   uint64
		want   uint64
	}{
		{1_000_000_000, 1_000_000, 1_000_000},
		{1_000_000_000, 29_999_999, 29_999_999},
		{999, 1_000_000, 0}, // floors to zero
		{12345, 30_000_000 - 1, 370},
		{0, 5_000_000, 0},
	}

	for _, tc := range cases {
		got := Amount(uint256.NewInt(tc.amount), uint256.NewInt(tc.rate))
		if !got.Eq(uint256.NewInt(tc.want)) {
			t.Errorf("Amount(%d, %d) = %s, want %d", tc.amount, tc.rate, got.Dec(), tc.want)
		}
	}
}

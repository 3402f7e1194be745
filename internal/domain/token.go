package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// NativeToken is the sentinel address used on the wire for the chain's
// intrinsic asset. It never corresponds to a deployed token.
var NativeToken = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// ZeroAddress is the null address; forbidden wherever a receiver or refund
// target is required.
var ZeroAddress = common.Address{}

func IsNative(token common.Address) bool {
	return token == NativeToken
}

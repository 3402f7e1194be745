package config

import (
	"errors"

	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/okx/WEB3-DEX/internal/common"
)

// EngineConfig carries the addresses the execution engine is wired with.
type EngineConfig struct {
	// RouterAddress is the engine's own custody address in the ledger.
	RouterAddress gethcommon.Address

	// WNativeAddress is the wrapped form of the native asset.
	WNativeAddress gethcommon.Address

	// ConstProdAdapter / ClmmAdapter are the registry handles used by the
	// single-family shorthand entry points.
	ConstProdAdapter gethcommon.Address
	ClmmAdapter      gethcommon.Address
}

func (ec *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (ec *EngineConfig) Load() error {
	ec.RouterAddress = gethcommon.HexToAddress(common.GetEnvOrDefault(
		"ROUTER_ADDRESS", "0x7D0CcAa3Fac1e5A943c5168b6CEd828691b46B36"))
	ec.WNativeAddress = gethcommon.HexToAddress(common.GetEnvOrDefault(
		"WNATIVE_ADDRESS", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"))
	ec.ConstProdAdapter = gethcommon.HexToAddress(common.GetEnvOrDefault(
		"CONSTPROD_ADAPTER_ADDRESS", "0x0000000000000000000000000000000000000a01"))
	ec.ClmmAdapter = gethcommon.HexToAddress(common.GetEnvOrDefault(
		"CLMM_ADAPTER_ADDRESS", "0x0000000000000000000000000000000000000a02"))
	return ec.Validate()
}

func (ec *EngineConfig) Validate() error {
	if ec.RouterAddress == (gethcommon.Address{}) || ec.WNativeAddress == (gethcommon.Address{}) {
		return errors.New("invalid engine config")
	}
	return nil
}

// OrdersConfig configures the order record store.
type OrdersConfig struct {
	DBPath string
}

func (oc *OrdersConfig) Key() string {
	return ORDERS_CONFIG_KEY
}

func (oc *OrdersConfig) Load() error {
	oc.DBPath = common.GetEnvOrDefault("ORDERS_DB_PATH", "./data/dex-router.db")
	return nil
}

func (oc *OrdersConfig) Validate() error {
	return nil
}

package engine

import (
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/okx/WEB3-DEX/internal/adapters"
	"github.com/okx/WEB3-DEX/internal/common"
	"github.com/okx/WEB3-DEX/internal/config"
	"github.com/okx/WEB3-DEX/internal/ledger"
	"github.com/okx/WEB3-DEX/internal/orderstore"
)

const ENGINE_SERVICE = "engine-service"

// Service wires the ledger, adapter registry and execution engine together
// and registers the reference adapter families under their configured
// handles.
type Service struct {
	container.BaseDIInstance

	logger *common.ServiceLogger
	conf   *config.EngineConfig

	ledger   *ledger.Ledger
	registry *adapters.Registry
	engine   *Engine

	constProd    *adapters.ConstProdAdapter
	concentrated *adapters.ConcentratedAdapter
}

func (svc *Service) ID() string {
	return ENGINE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = common.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)

	orderSvc := c.Instance(orderstore.ORDER_STORE_SERVICE).(*orderstore.Service)

	svc.ledger = ledger.New(svc.conf.WNativeAddress)
	svc.registry = adapters.NewRegistry()
	svc.engine = New(svc.conf, svc.ledger, svc.registry, orderSvc.Storage())

	svc.constProd = adapters.NewConstProd(svc.ledger)
	svc.registry.Register(svc.conf.ConstProdAdapter, svc.constProd)

	// The concentrated family collects its input through the engine's
	// payment callback.
	svc.concentrated = adapters.NewConcentrated(svc.ledger, svc.engine)
	svc.registry.Register(svc.conf.ClmmAdapter, svc.concentrated)

	return nil
}

func (svc *Service) Start() error {
	svc.logger.Info().
		Str("router", svc.conf.RouterAddress.Hex()).
		Str("wnative", svc.conf.WNativeAddress.Hex()).
		Msg("engine ready")
	return nil
}

func (svc *Service) Stop() error {
	return nil
}

func (svc *Service) Engine() *Engine {
	return svc.engine
}

func (svc *Service) ConstProd() *adapters.ConstProdAdapter {
	return svc.constProd
}

func (svc *Service) Concentrated() *adapters.ConcentratedAdapter {
	return svc.concentrated
}

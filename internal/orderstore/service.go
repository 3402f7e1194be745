package orderstore

import (
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/okx/WEB3-DEX/internal/common"
	"github.com/okx/WEB3-DEX/internal/config"
)

const ORDER_STORE_SERVICE = "order-store-service"

// Service owns the order record database for the lifetime of the process.
type Service struct {
	container.BaseDIInstance

	logger  *common.ServiceLogger
	conf    *config.OrdersConfig
	storage *Storage
}

func (svc *Service) ID() string {
	return ORDER_STORE_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.logger = common.NewServiceLogger(svc)
	svc.conf = c.GetConfig(config.ORDERS_CONFIG_KEY).(*config.OrdersConfig)

	storage, err := NewStorage(svc.conf.DBPath)
	if err != nil {
		return err
	}
	svc.storage = storage
	return nil
}

func (svc *Service) Start() error {
	count, err := svc.storage.Count()
	if err != nil {
		return err
	}
	svc.logger.Info().Int("orders", count).Msg("order store ready")
	return nil
}

func (svc *Service) Stop() error {
	if svc.storage == nil {
		return nil
	}
	if err := svc.storage.Close(); err != nil {
		svc.logger.Error().Err(err).Msg("failed to close order store")
		return err
	}
	svc.logger.Info().Msg("order store closed")
	return nil
}

func (svc *Service) Storage() *Storage {
	return svc.storage
}

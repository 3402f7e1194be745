package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/okx/WEB3-DEX/internal/config"
	"github.com/okx/WEB3-DEX/internal/engine"
	"github.com/okx/WEB3-DEX/internal/http"
	"github.com/okx/WEB3-DEX/internal/orderstore"
)

func main() {
	// load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded, using process environment")
	}

	// di container config
	conf := container.NewConf(
		&config.GeneralConfig{},
		&config.EngineConfig{},
		&config.OrdersConfig{},
	)

	// di container
	dic, err := container.New(
		conf,

		&orderstore.Service{},
		&engine.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}

	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}

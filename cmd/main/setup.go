package main

import (
	"time"

	"synapse-console/src/backend"
	"synapse-console/src/console"
	"synapse-console/src/controller"
	"synapse-console/src/interfaces"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/network"
	"synapse-console/src/session"
	"synapse-console/src/storage"
	"synapse-console/src/store"
	"synapse-console/src/stream"
	"synapse-console/src/utils"
)

// core bundles the long-lived components shared by the servers.
type core struct {
	store      *store.Store
	controller *controller.Controller
	clock      *utils.MarketClock
}

// -----------------------------------------------------------------------------

// setupStorage opens the token slot based on config
func setupStorage(config *models.MConfig, appLogger *logger.Logger) interfaces.ITokenStore {
	tokens, err := storage.NewTokenStore(config, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init token store: %v", err)
	}
	return tokens
}

// -----------------------------------------------------------------------------

// setupCore wires backend clients, state and the event stream
func setupCore(config *models.MConfig, loc *time.Location, tokens interfaces.ITokenStore, appLogger *logger.Logger) *core {
	networkManager := network.NewAsyncNetworkManager(config, appLogger)
	identity := backend.NewIdentityClient(config.Identity, networkManager, appLogger)
	modelSource := backend.NewModelClient(config.API, networkManager, appLogger)

	st := store.NewStore(tokens, utils.NewChartBuffer(loc), console.NewConsole(config.Console.MaxEntries), appLogger)
	clock := utils.NewMarketClock()

	sess := session.NewManager(st, identity, modelSource, appLogger)
	channel := stream.NewChannel(config.Stream, st, clock, appLogger)

	return &core{
		store:      st,
		controller: controller.NewController(st, sess, channel, appLogger),
		clock:      clock,
	}
}

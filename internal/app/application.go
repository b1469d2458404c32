// Package app ties the tipping platform's services together.
package app

import (
	domain "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/domain/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/ledger"
	identitysvc "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/services/identity"
	tippingsvc "github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/services/tipping"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/internal/app/storage/memory"
	"github.com/JaNjoku/Decentralised-Tipping-Platform/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Stats      storage.StatsStore
	Identities storage.IdentityStore
	Tips       storage.TipStore
}

// Application bundles the domain services.
type Application struct {
	log *logger.Logger

	Params   domain.Params
	Tipping  *tippingsvc.Service
	Identity *identitysvc.Service
}

// New builds a fully initialised application. The ledger is required; it is
// the external settlement collaborator every tip runs through.
func New(params domain.Params, stores Stores, lgr ledger.Ledger, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Stats == nil {
		stores.Stats = mem
	}
	if stores.Identities == nil {
		stores.Identities = mem
	}
	if stores.Tips == nil {
		stores.Tips = mem
	}

	return &Application{
		log:      log,
		Params:   params,
		Tipping:  tippingsvc.New(params, stores.Stats, stores.Tips, lgr, log),
		Identity: identitysvc.New(params, stores.Identities, log),
	}
}

//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/ariachat/server/internal/infra/config"
)

// InitializeApp creates the application using Wire. The returned cleanup
// closes Redis, the database and flushes the logger.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}

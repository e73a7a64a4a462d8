package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/expediterhq/expediter/internal/clock"
	"github.com/expediterhq/expediter/internal/config"
	"github.com/expediterhq/expediter/internal/logger"
	"github.com/expediterhq/expediter/internal/migration"
	"github.com/expediterhq/expediter/internal/server"
	"github.com/expediterhq/expediter/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

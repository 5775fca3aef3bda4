package main

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/asteain-ninia/ExoClim/internal/config"
	"github.com/asteain-ninia/ExoClim/internal/database"
	"github.com/asteain-ninia/ExoClim/internal/storage"
	"github.com/asteain-ninia/ExoClim/internal/storage/gormstore"
	"github.com/asteain-ninia/ExoClim/internal/storage/memory"
	wsstorage "github.com/asteain-ninia/ExoClim/internal/storage/websocket"
)

func createStorageBackend(storageCfg config.StorageConfig, dbLog zerolog.Logger, logger *slog.Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		manager := database.NewManager(dbLog)
		if err := manager.Connect(config.GetDBConfig()); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if manager.ShouldSaveLocal {
			logger.Warn("Postgres unavailable, recording to in-memory SQLite", "dumpPath", storageCfg.SQLite.DumpPath)
		} else {
			logger.Info("Postgres storage backend initialized")
		}
		return gormstore.New(manager, gormstore.Config{DumpPath: storageCfg.SQLite.DumpPath}), nil

	case "sqlite":
		manager := database.NewManager(dbLog)
		if err := manager.ConnectSQLite(""); err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		logger.Info("SQLite storage backend initialized", "dumpPath", storageCfg.SQLite.DumpPath)
		return gormstore.New(manager, gormstore.Config{DumpPath: storageCfg.SQLite.DumpPath}), nil

	case "websocket":
		logger.Info("WebSocket storage backend initialized", "url", storageCfg.WebSocket.URL)
		return wsstorage.New(wsstorage.Config{
			URL:    storageCfg.WebSocket.URL,
			Secret: storageCfg.WebSocket.Secret,
			Frames: storageCfg.WebSocket.Frames,
		}, logger), nil

	case "", "memory":
		logger.Info("Memory storage backend initialized", "outputDir", storageCfg.Memory.OutputDir)
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}

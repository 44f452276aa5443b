package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"spiritclash/internal/api"
	"spiritclash/internal/battle"
	"spiritclash/internal/config"
	"spiritclash/internal/encounter"
	"spiritclash/internal/logging"
	"spiritclash/internal/storage"
	"spiritclash/internal/util"
)

func main() {
	defer logging.Sync()

	settings, err := config.LoadSettings()
	if err != nil {
		logging.Fatal("load settings", err, nil)
	}
	seed := settings.Seed
	if seed == 0 {
		if seed, err = util.NewSeed(); err != nil {
			logging.Fatal("draw seed", err, nil)
		}
	}

	bundle, err := config.LoadAll(settings.AssetsDir)
	if err != nil {
		logging.Fatal("load catalogs", err, logging.Fields{"dir": settings.AssetsDir})
	}
	catalog, err := battle.NewCatalog(bundle)
	if err != nil {
		logging.Fatal("build catalog", err, nil)
	}
	store, err := storage.OpenSQLite(settings.DBPath, catalog)
	if err != nil {
		logging.Fatal("open store", err, logging.Fields{"path": settings.DBPath})
	}
	defer store.Close()

	rng := util.New(seed)
	reg := api.NewRegistry(battle.Deps{
		Persistence: store,
		Encounters:  encounter.NewSource(bundle.Encounters, util.New(rng.Int63())),
		Catalog:     catalog,
		Scheduler:   battle.TimerScheduler{},
		TurnDelay:   settings.TurnDelay,
	}, rng.Int63())

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewBattleHandler(reg))
	srv := &http.Server{Addr: settings.HTTPAddr, Handler: router}

	go func() {
		logging.Info("Server started", logging.Fields{"addr": settings.HTTPAddr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to start server", err, nil)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("shutdown", err, nil)
	}
	reg.CloseAll()
	logging.Info("Server stopped", nil)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ZilDuck/hedera-nft-explorer/internal/config"
	"github.com/ZilDuck/hedera-nft-explorer/internal/config/di"
	"github.com/ZilDuck/hedera-nft-explorer/internal/entity"
	"github.com/ZilDuck/hedera-nft-explorer/internal/event"
	"go.uber.org/zap"
)

func main() {
	config.Init("apiserver")

	container, err := di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer func() { _ = container.Delete() }()

	failures := container.GetEventManager().AddEventListener(event.MetadataFailedEvent, func(msg interface{}) {
		nft := msg.(entity.NftWithMetadata)
		zap.L().With(zap.String("tokenId", nft.TokenId), zap.Int64("serialNumber", nft.SerialNumber), zap.String("error", nft.MetadataError)).Debug("Metadata unavailable")
	})
	defer container.GetEventManager().RemoveEventListener(failures)

	srv := &http.Server{
		Addr:              ":" + config.Get().ApiPort,
		Handler:           container.GetServer().Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Serving explorer api on :" + config.Get().ApiPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().With(zap.Error(err)).Fatal("Failed to start api server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to shut down api server")
	}
	zap.L().Info("Api server stopped")
}

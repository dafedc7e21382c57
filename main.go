package main

import (
	"context"

	"github.com/mpurcell/contentapi/config"
	"github.com/mpurcell/contentapi/jobs"
	"github.com/mpurcell/contentapi/models"
	"github.com/mpurcell/contentapi/routes"
	"github.com/mpurcell/contentapi/storage"
	"github.com/mpurcell/contentapi/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{})

	files := storage.New(cfg.UploadsDir, cfg.UploadsBaseURL)

	// Welcome email worker drains the Redis queue for the process lifetime.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	jobs.StartWorker(workerCtx)

	r := routes.SetupRouter(db, files)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/config"
	routes "github.com/Mohid710/AEO-Snippet-Optimizer/internal/handler"
	"github.com/Mohid710/AEO-Snippet-Optimizer/internal/server"

	"github.com/gin-gonic/gin"
)

var (
	initServerless sync.Once
	initErr        error
	cachedEngine   *gin.Engine
)

// Handler is the entry point for Vercel serverless functions.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	initServerless.Do(func() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		gin.SetMode(gin.ReleaseMode)

		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}

		// nothing drains the archive queue next to a serverless function
		cfg.ArchiveQueue = false

		// connections live as long as the function instance
		cachedEngine, _, initErr = server.Build(context.Background(), cfg)
	})

	if initErr != nil {
		slog.Error("serverless init failed", "error", initErr)
		writeInitError(w)
		return
	}

	cachedEngine.ServeHTTP(w, r)
}

func writeInitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(routes.ErrorResponse{Error: "Internal server error"})
}

// cmd/matcher/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"agrimatch/internal/catalog"
	"agrimatch/internal/common/config"
	"agrimatch/internal/common/database"
	apperrors "agrimatch/internal/common/errors"
	"agrimatch/internal/common/httpclient"
	"agrimatch/internal/common/logger"
	"agrimatch/internal/common/observability"
	appevents "agrimatch/internal/events"
	"agrimatch/internal/matching/engine"
	"agrimatch/internal/matching/feature"
	"agrimatch/internal/matching/hybrid"
	"agrimatch/internal/matching/service"
	"agrimatch/internal/matching/task"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting match engine...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("Failed to load configuration", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	ctx := context.Background()

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		zapLog.Warn("Redis unreachable at startup, task store will use in-process fallback", zap.Error(err))
	}

	pgClient, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("Failed to create Postgres client", zap.Error(err))
	}
	defer pgClient.Close()
	if err := pgClient.Ping(ctx); err != nil {
		zapLog.Fatal("Postgres unreachable", zap.Error(err))
	}

	pgCatalog := catalog.NewPostgresCatalog(pgClient.GetDB())

	var searcher catalog.CandidateSearcher = pgCatalog
	if cfg.Matching.Searcher == "elasticsearch" {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("Failed to create Elasticsearch client", zap.Error(err))
		}
		searcher = catalog.NewESSearcher(esClient.Client, cfg.Database.Elasticsearch.Index)
	}

	weights := feature.Weights{
		Variety: cfg.Matching.Weights.Variety,
		Region:  cfg.Matching.Weights.Region,
		Climate: cfg.Matching.Weights.Climate,
		Season:  cfg.Matching.Weights.Season,
		Quality: cfg.Matching.Weights.Quality,
		Intent:  cfg.Matching.Weights.Intent,
	}
	calculator := engine.NewCalculator(weights, cfg.Matching.HardMismatchThreshold)

	var predictor hybrid.Predictor
	if cfg.ML.Enabled {
		predictor = hybrid.NewClient(cfg.ML.Endpoint, httpclient.NewClient(cfg.ML.Timeout))
	}
	scorer := hybrid.NewService(calculator, predictor, cfg.ML, log)

	store := task.NewFailoverStore(
		task.NewRedisStore(redisClient.GetClient(), cfg.Matching.TaskTTL),
		task.NewMemoryStore(cfg.Matching.TaskTTL),
		log,
	)

	var publisher appevents.Publisher = appevents.NewLogPublisher(log)
	if cfg.Events.SNS.Enabled {
		snsPublisher, err := appevents.NewSNSPublisher(ctx, cfg.Events.SNS.Region, cfg.Events.SNS.TopicARN)
		if err != nil {
			zapLog.Warn("Failed to create SNS publisher, falling back to log events", zap.Error(err))
		} else {
			publisher = snsPublisher
		}
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	matcher := service.NewAsyncService(cfg.Matching, service.Deps{
		Store:  store,
		Plans:  pgCatalog,
		Search: searcher,
		Scorer: scorer,
		Events: publisher,
		Obs:    obs,
		Logger: log,
	})
	defer matcher.Shutdown()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	registerMatchRoutes(mux, matcher, log)

	server := &http.Server{
		Addr:    cfg.App.MetricsAddr,
		Handler: mux,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

// registerMatchRoutes exposes the upstream surface. Request validation and
// session handling live in the API gateway; the owner id arrives as a header.
func registerMatchRoutes(mux *http.ServeMux, matcher *service.AsyncService, log logger.Logger) {
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	writeErr := func(w http.ResponseWriter, err error) {
		log.WithError(err).Warn("match request rejected", nil)
		status := http.StatusBadRequest
		if apperrors.IsNotFound(err) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
	}

	mux.HandleFunc("/api/match/submit", func(w http.ResponseWriter, r *http.Request) {
		planID := r.URL.Query().Get("planId")
		userID := r.Header.Get("X-User-Id")
		t, queueLen, err := matcher.Submit(r.Context(), planID, userID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"taskId":        t.ID,
			"status":        t.Status,
			"queuePosition": queueLen - 1,
		})
	})

	mux.HandleFunc("/api/match/status", func(w http.ResponseWriter, r *http.Request) {
		t, err := matcher.Status(r.Context(), r.URL.Query().Get("taskId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	})

	mux.HandleFunc("/api/match/result", func(w http.ResponseWriter, r *http.Request) {
		res, err := matcher.Result(r.Context(), r.URL.Query().Get("taskId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	mux.HandleFunc("/api/match/cancel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		err := matcher.Cancel(r.Context(), r.URL.Query().Get("taskId"), r.Header.Get("X-User-Id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	})

	mux.HandleFunc("/api/match/queue-size", func(w http.ResponseWriter, r *http.Request) {
		n, err := matcher.QueueSize(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"queueSize": n})
	})
}

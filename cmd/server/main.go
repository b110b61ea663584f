package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/contestlab/backend/clock"
	"github.com/contestlab/backend/conf"
	contesthttp "github.com/contestlab/backend/contest/http"
	contestpgrepo "github.com/contestlab/backend/contest/pgrepo"
	contestsrvc "github.com/contestlab/backend/contest/srvc"
	"github.com/contestlab/backend/enroll"
	"github.com/contestlab/backend/http"
	"github.com/contestlab/backend/quesbank"
	reviewhttp "github.com/contestlab/backend/review/http"
	reviewsrvc "github.com/contestlab/backend/review/srvc"
	submhttp "github.com/contestlab/backend/subm/http"
	submpgrepo "github.com/contestlab/backend/subm/pgrepo"
	submsrvc "github.com/contestlab/backend/subm/srvc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey == "" {
		slog.Error("JWT_KEY is not set")
		os.Exit(1)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.toml"
	}
	cfg, err := conf.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), conf.GetPgConnStrFromEnv())
	if err != nil {
		slog.Error("failed to create pg pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	clk := clock.New()

	contestRepo := contestpgrepo.NewPgContestRepo(pool)
	submRepo := submpgrepo.NewPgSubmRepo(pool)
	bank := quesbank.NewPgQuestionBank(pool)
	enrollChecker := enroll.NewPgEnrollChecker(pool)

	contestSrvc := contestsrvc.NewContestSrvc(contestRepo, bank, clk)
	submSrvc := submsrvc.NewSubmSrvc(contestRepo, enrollChecker, submRepo, clk)
	reviewSrvc := reviewsrvc.NewReviewSrvc(submRepo, contestRepo, clk)

	httpServer := http.NewHttpServer(
		contesthttp.NewContestHttpHandler(contestSrvc),
		submhttp.NewSubmHttpHandler(submSrvc),
		reviewhttp.NewReviewHttpHandler(reviewSrvc),
		[]byte(jwtKey),
		cfg.HTTP.AllowedOrigins,
	)

	log.Printf("Starting server on %s", cfg.HTTP.Address)
	err = httpServer.Start(cfg.HTTP.Address)
	log.Printf("Server stopped with error: %v", err)
}

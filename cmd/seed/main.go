package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spacehub-dev/operating-schedule/backend/internal/cache"
	"github.com/spacehub-dev/operating-schedule/backend/internal/config"
	"github.com/spacehub-dev/operating-schedule/backend/internal/domain"
	"github.com/spacehub-dev/operating-schedule/backend/internal/repository"
	"github.com/spacehub-dev/operating-schedule/backend/internal/seed"
	"github.com/spacehub-dev/operating-schedule/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string
	var partner string

	flag.IntVar(&op, "op", 0, "operation to run (1: load a YAML fixture, 2: insert random locations)")
	flag.IntVar(&n, "n", 5, "number of random locations to insert")
	flag.StringVar(&file, "file", "./internal/seed/data/demo.yaml", "fixture to load with -op 1")
	flag.StringVar(&partner, "partner", "", "partner id for -op 2, a new partner is created when empty")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	// closures written here must not be hidden by lists the API already cached
	var rdb *redis.Client
	ttl := time.Duration(cfg.Redis.ClosureCacheTTL) * time.Second
	if ttl > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}
	closures := cache.NewClosureCache(rdb, repo, ttl)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		f, err := os.Open(file)
		if err != nil {
			slog.Error("failed to open fixture", slog.String("error", err.Error()))
			return
		}
		defer f.Close()

		fixture, err := seed.Parse(f)
		if err != nil {
			slog.Error("failed to parse fixture", slog.String("error", err.Error()))
			return
		}

		sum, err := seed.Load(context.Background(), repo, fixture)
		if err != nil {
			slog.Error("failed to load fixture", slog.String("error", err.Error()))
			return
		}
		for _, partnerID := range sum.Partners {
			invalidateClosures(context.Background(), closures, partnerID)
		}
		slog.Info("fixture loaded",
			slog.Int("partners", len(sum.Partners)),
			slog.Int("locations", sum.Locations),
			slog.Int("resources", sum.Resources),
			slog.Int("closures", sum.Closures),
		)
	case 2:
		if n <= 0 {
			slog.Error("location count must be positive")
			return
		}
		if err := seedRandom(context.Background(), repo, closures, partner, n); err != nil {
			slog.Error("failed to insert random data", slog.String("error", err.Error()))
		}
	default:
		slog.Error("unknown operation")
	}
}

func seedRandom(ctx context.Context, repo *repository.Repository, closures *cache.ClosureCache, partner string, n int) error {
	var partnerID uuid.UUID
	if partner == "" {
		p := &domain.Partner{Name: fmt.Sprintf("Random Partner %s", time.Now().Format("2006-01-02 15:04"))}
		if err := repo.CreatePartner(ctx, p); err != nil {
			return err
		}
		partnerID = p.ID
		slog.Info("partner created", slog.String("partner_id", partnerID.String()))
	} else {
		id, err := uuid.Parse(partner)
		if err != nil {
			return err
		}
		partnerID = id
	}

	types := make([]*domain.ResourceType, 0, len(utils.ResourceTypeLabels))
	for _, label := range utils.ResourceTypeLabels {
		rt := &domain.ResourceType{PartnerID: partnerID, Code: utils.ResourceTypeCode(label), Label: label}
		if err := repo.UpsertResourceType(ctx, rt); err != nil {
			return err
		}
		types = append(types, rt)
	}

	today := domain.DateOf(time.Now())
	cnt := 0
	for i := 0; i < n; i++ {
		loc := &domain.Location{PartnerID: partnerID, Name: utils.GenerateRandomLocationName()}
		if err := repo.CreateLocation(ctx, loc); err != nil {
			slog.Error("failed to insert location", slog.String("error", err.Error()))
			continue
		}
		if err := repo.ReplaceLocationSchedule(ctx, partnerID, loc.ID, utils.GenerateRandomLocationWeek(loc.ID)); err != nil {
			slog.Error("failed to insert location schedule", slog.String("error", err.Error()))
			continue
		}

		for _, rt := range types {
			count := rand.Intn(3) + 1
			for k := 1; k <= count; k++ {
				res := &domain.Resource{
					PartnerID:  partnerID,
					LocationID: loc.ID,
					Name:       utils.GenerateRandomResourceName(rt.Label, k),
					Type:       rt.Code,
				}
				if err := repo.CreateResource(ctx, res); err != nil {
					slog.Error("failed to insert resource", slog.String("error", err.Error()))
					continue
				}
				if err := repo.ReplaceResourceSchedule(ctx, partnerID, res.ID, utils.GenerateRandomOverride(res.ID)); err != nil {
					slog.Error("failed to insert resource schedule", slog.String("error", err.Error()))
				}
			}
		}

		rt := types[rand.Intn(len(types))]
		for _, target := range []domain.ClosureTarget{
			domain.LocationClosure(loc.ID),
			domain.ResourceTypeClosure(loc.ID, rt.Code),
		} {
			if err := repo.CreateClosure(ctx, utils.GenerateRandomClosure(partnerID, target, today)); err != nil {
				slog.Error("failed to insert closure", slog.String("error", err.Error()))
			}
		}

		cnt++
	}
	invalidateClosures(ctx, closures, partnerID)

	slog.Info("random locations inserted", slog.Int("count", cnt))
	return nil
}

func invalidateClosures(ctx context.Context, closures *cache.ClosureCache, partnerID uuid.UUID) {
	if err := closures.Invalidate(ctx, partnerID); err != nil {
		slog.Warn("failed to invalidate cached closures",
			slog.String("partner_id", partnerID.String()),
			slog.String("error", err.Error()),
		)
	}
}

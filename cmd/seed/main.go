package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"quickstay/internal/adapters/observability"
	"quickstay/internal/domain"
	"quickstay/internal/shared"
	mysqlrepo "quickstay/internal/storage/mysql"
)

type seedRoom struct {
	RoomType      string   `json:"roomType"`
	PricePerNight int64    `json:"pricePerNight"`
	Amenities     []string `json:"amenities"`
	Images        []string `json:"images"`
}

type seedHotel struct {
	OwnerID string     `json:"ownerId"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	City    *string    `json:"city"`
	Contact *string    `json:"contact"`
	Rooms   []seedRoom `json:"rooms"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read seed file")
	}
	var hotels []seedHotel
	if err := json.Unmarshal(raw, &hotels); err != nil {
		log.Fatal().Err(err).Msg("failed to parse seed file")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, sh := range hotels {
		sh := sh

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(sh seedHotel) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := seedOne(ctx, repo, sh); err != nil {
				log.Warn().Str("owner", sh.OwnerID).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("owner", sh.OwnerID).Int("rooms", len(sh.Rooms)).Msg("seed ok")
		}(sh)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}

func seedOne(ctx context.Context, repo *mysqlrepo.Repo, sh seedHotel) error {
	h := domain.Hotel{
		OwnerID: sh.OwnerID,
		Name:    sh.Name,
		Address: sh.Address,
		City:    sh.City,
		Contact: sh.Contact,
	}
	if err := repo.CreateHotel(ctx, &h); err != nil {
		return err
	}
	for _, sr := range sh.Rooms {
		r := domain.Room{
			HotelID:       h.ID,
			RoomType:      sr.RoomType,
			PricePerNight: sr.PricePerNight,
			Amenities:     sr.Amenities,
			Images:        sr.Images,
			IsAvailable:   true,
		}
		if err := repo.CreateRoom(ctx, &r); err != nil {
			return err
		}
	}
	return nil
}

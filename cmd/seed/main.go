package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"babsy-voucher-platform/internal/config"
	"babsy-voucher-platform/internal/domain/model"
	"babsy-voucher-platform/internal/domain/ports/repository"
	pg "babsy-voucher-platform/internal/infra/db/postgres"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	partnerRepo := pg.NewPartnerRepo(pool)
	userRepo := pg.NewUserRepo(pool)

	// If partners already exist, do nothing.
	existing, err := partnerRepo.ListActive(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list partners: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d partners already present. No changes.\n", len(existing))
		for _, p := range existing {
			fmt.Printf("  - %s (%s)\n", p.Name, p.Category)
		}
		return
	}

	seedPartners := []struct {
		Name        string
		Description string
		Category    string
		Address     string
	}{
		{"Zoo Zürich", "Free child admission with one paying adult", "leisure", "Zürichbergstrasse 221, Zürich"},
		{"Café Miteinander", "One free kids' hot chocolate", "food", "Bahnhofstrasse 12, Winterthur"},
		{"Verkehrshaus Luzern", "20% off family tickets", "museum", "Lidostrasse 5, Luzern"},
	}

	var partners []*model.Partner
	var users []*model.User
	member, err := model.NewUser(uuid.NewString(), "anna.keller", "anna.keller@example.ch", model.UserTypeMember)
	if err != nil {
		log.Fatalf("new user: %v", err)
	}
	backoffice, err := model.NewUser(uuid.NewString(), "backoffice", "backoffice@babsy.ch", model.UserTypeEmployee)
	if err != nil {
		log.Fatalf("new user: %v", err)
	}
	users = append(users, member, backoffice)

	// Seed atomically so a half-seeded directory never survives a crash.
	txm := pg.NewTxManager(pool)
	err = txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		for i, sp := range seedPartners {
			p, err := model.NewPartner(uuid.NewString(), sp.Name, sp.Description, sp.Category)
			if err != nil {
				return fmt.Errorf("new partner %q: %w", sp.Name, err)
			}
			p.Address = sp.Address
			if err := partnerRepo.Save(ctx, tx, p); err != nil {
				return fmt.Errorf("save partner %q: %w", p.Name, err)
			}
			partners = append(partners, p)

			staff, err := model.NewUser(uuid.NewString(), fmt.Sprintf("staff%d", i+1), fmt.Sprintf("staff%d@babsy.ch", i+1), model.UserTypePartner)
			if err != nil {
				return fmt.Errorf("new staff user: %w", err)
			}
			staff.PartnerID = &p.ID
			users = append(users, staff)
		}
		for _, u := range users {
			if err := userRepo.Save(ctx, tx, u); err != nil {
				return fmt.Errorf("save user %q: %w", u.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	for _, p := range partners {
		fmt.Printf("seeded partner: %s (id=%s)\n", p.Name, p.ID)
	}
	for _, u := range users {
		fmt.Printf("seeded user: %s (type=%s)\n", u.Username, u.Type)
	}
	fmt.Println("Seeding complete.")
}

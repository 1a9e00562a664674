package main

import (
	"context"
	"log"
	"strings"
	"time"

	"booking-api/internal/auth"
	"booking-api/internal/config"
	"booking-api/internal/db"
	"booking-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedService struct {
	Name        string
	DurationMin int
	Price       float64
	Category    string
}

type seedProvider struct {
	Name        string
	Email       string
	Specialties []string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	if cfg.SeedAdminPassword == "" {
		log.Printf("seed admin: SEED_ADMIN_PASSWORD missing, skipping %s", cfg.SeedAdminEmail)
	} else if err := seedAdmin(ctx, cols.Users, cfg.SeedAdminEmail, cfg.SeedAdminName, cfg.SeedAdminPassword, now); err != nil {
		log.Fatalf("seed admin error for %s: %v", cfg.SeedAdminEmail, err)
	}

	services := []seedService{
		{Name: "Consultation", DurationMin: 30, Price: 50, Category: "general"},
		{Name: "Follow-up", DurationMin: 15, Price: 25, Category: "general"},
		{Name: "Extended session", DurationMin: 60, Price: 90, Category: "specialist"},
	}
	for _, svc := range services {
		category := svc.Category
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":         primitive.NewObjectID().Hex(),
				"name":        svc.Name,
				"durationMin": svc.DurationMin,
				"price":       svc.Price,
				"description": nil,
				"category":    &category,
				"isActive":    true,
				"createdAt":   now,
				"updatedAt":   now,
			},
		}
		if err := upsert(ctx, cols.Services, bson.M{"name": svc.Name}, update); err != nil {
			log.Fatalf("seed error for service %s: %v", svc.Name, err)
		}
	}

	providers := []seedProvider{
		{Name: "Dr. Ada Byron", Email: "ada@example.com", Specialties: []string{"general"}},
		{Name: "Dr. Alan Turing", Email: "alan@example.com", Specialties: []string{"specialist", "general"}},
	}
	for _, p := range providers {
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":          primitive.NewObjectID().Hex(),
				"name":         p.Name,
				"email":        p.Email,
				"specialties":  p.Specialties,
				"availability": nil,
				"isActive":     true,
				"createdAt":    now,
				"updatedAt":    now,
			},
		}
		if err := upsert(ctx, cols.Providers, bson.M{"email": p.Email}, update); err != nil {
			log.Fatalf("seed error for provider %s: %v", p.Email, err)
		}
	}

	log.Println("seed completed")
}

// seedAdmin creates the admin or resets its password and role.
func seedAdmin(ctx context.Context, users *mongo.Collection, email, name, password string, now time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"authProvider": models.AuthProviderCredentials,
			"passwordHash": hash,
			"role":         models.RoleAdmin,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"email":     email,
			"name":      name,
			"createdAt": now,
		},
	}
	return upsert(ctx, users, bson.M{"email": email}, update)
}

func upsert(ctx context.Context, col *mongo.Collection, filter, update bson.M) error {
	_, err := col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"quill/internal/auth"
	"quill/internal/config"
	"quill/internal/db"
	"quill/internal/model"
	"quill/internal/repository"
	"quill/internal/service"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Posts    []seedPost
}

type seedPost struct {
	Title     string
	Content   string
	Published bool
}

var fixtures = []seedUser{
	{
		Name:     "Alice Example",
		Email:    "alice@example.com",
		Password: "password1",
		Posts: []seedPost{
			{Title: "Hello, world", Content: "First post on the new blog.", Published: true},
			{Title: "Draft thoughts", Content: "Not ready to publish yet.", Published: false},
		},
	},
	{
		Name:     "Bob Example",
		Email:    "bob@example.com",
		Password: "password2",
		Posts: []seedPost{
			{Title: "On writing", Content: "Short posts beat long drafts.", Published: true},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)
	posts := repository.NewPostRepository(gormDB)

	created := 0
	for _, fixture := range fixtures {
		user, err := seedOne(ctx, users, posts, fixture)
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", fixture.Email, err)
		}
		if user != nil {
			created++
		}
	}

	log.Printf("Seed complete: %d new users", created)
}

// seedOne creates the fixture user and their posts, skipping users that
// already exist so the script stays re-runnable.
func seedOne(ctx context.Context, users repository.UserRepository, posts repository.PostRepository, fixture seedUser) (*model.User, error) {
	email := service.NormalizeEmail(fixture.Email)

	if _, err := users.FindByEmail(ctx, email); err == nil {
		log.Printf("User %s already exists, skipping", email)
		return nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(fixture.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         fixture.Name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}

	for _, p := range fixture.Posts {
		post := &model.Post{
			Title:     p.Title,
			Content:   p.Content,
			Published: p.Published,
			AuthorID:  user.ID,
		}
		if err := posts.Create(ctx, post); err != nil {
			return nil, err
		}
	}

	log.Printf("Seeded user %s with %d posts", email, len(fixture.Posts))
	return user, nil
}

package seeds

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE recommendations, user_library, books, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting users")
	if err := seedUsers(ctx, pool, 25); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Println("[seed] inserting books")
	if err := seedBooks(ctx, pool, rng, 60); err != nil {
		return fmt.Errorf("seed books: %w", err)
	}

	log.Println("[seed] inserting library entries")
	if err := seedLibraries(ctx, pool, rng, 300); err != nil {
		return fmt.Errorf("seed libraries: %w", err)
	}

	log.Println("[seed] seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		createdAt := time.Now().AddDate(0, 0, -(i*13)%365)
		rows = append(rows, fmt.Sprintf("($%d)", i+1))
		args = append(args, createdAt)
	}

	query := "INSERT INTO users (created_at) VALUES " + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedBooks(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	genres := []string{"fantasy", "mystery", "sci-fi", "romance", "history", "biography"}
	authorsByGenre := map[string][]string{
		"fantasy":   {"N. Vale", "R. Thorn", "M. Ashwood"},
		"mystery":   {"D. Harrow", "K. Lindqvist", "P. Moreau"},
		"sci-fi":    {"A. Okafor", "L. Chen", "S. Petrov"},
		"romance":   {"C. Bellamy", "J. Ortiz", "E. Rowan"},
		"history":   {"T. Whitfield", "H. Braun", "G. Ferreira"},
		"biography": {"I. Sandoval", "W. Kessler", "F. Adeyemi"},
	}
	publishers := []string{"Northlight Press", "Harbor House", "Quill & Crane", "Meridian Books"}
	tagPool := []string{"award_winner", "debut", "series", "standalone", "translated", "bestseller", "illustrated"}

	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		genre := genres[i%len(genres)]
		authors := authorsByGenre[genre]
		author := authors[rng.Intn(len(authors))]
		publisher := publishers[rng.Intn(len(publishers))]
		title := fmt.Sprintf("%s volume %d", strings.ToUpper(genre[:1])+genre[1:], i/len(genres)+1)

		tags := []string{tagPool[rng.Intn(len(tagPool))], tagPool[rng.Intn(len(tagPool))]}
		rating := math.Round((2.5+rng.Float64()*2.5)*10) / 10
		totalReaders := int(math.Pow(rng.Float64(), 2.0) * 5000)
		recentAdditions := rng.Intn(60)
		// A handful of fresh releases inside the new-release window
		daysAgo := rng.Intn(730)
		if i%10 == 0 {
			daysAgo = rng.Intn(13)
		}
		publishedAt := time.Now().AddDate(0, 0, -daysAgo)
		pageCount := 15 + rng.Intn(600)
		isFree := rng.Float64() < 0.2

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, TRUE, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11))
		args = append(args, title, genre, author, publisher, tags, rating,
			totalReaders, recentAdditions, publishedAt, isFree, pageCount)
	}

	query := `INSERT INTO books
		(title, genre, author, publisher, tags, rating, total_readers,
		recent_additions, published_at, visible, is_free, page_count)
		VALUES ` + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedLibraries(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	seen := make(map[[2]int64]bool)

	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		userID := int64(math.Ceil(math.Pow(rng.Float64(), 1.5) * 25))
		userID = max(1, min(userID, 25))

		bookID := int64(math.Ceil(math.Pow(rng.Float64(), 1.3) * 60))
		bookID = max(1, min(bookID, 60))

		key := [2]int64{userID, bookID}
		if seen[key] {
			continue
		}
		seen[key] = true

		progress := math.Round(rng.Float64()*1000) / 10
		// Roughly 60% of held books carry a rating, in half-star steps 1.0-5.0.
		var rating any
		if rng.Float64() < 0.6 {
			rating = 1.0 + float64(rng.Intn(9))*0.5
		}
		addedAt := time.Now().AddDate(0, 0, -rng.Intn(180))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5))
		args = append(args, userID, bookID, rating, progress, addedAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO user_library (user_id, book_id, rating, progress_percent, added_at) VALUES " +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

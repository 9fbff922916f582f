// Command transcript fetches a sermon transcript by YouTube video ID,
// serving from the database cache when possible.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sermonbot/internal/app"
)

func main() {
	title := flag.String("title", "", "sermon title")
	preacher := flag.String("preacher", "", "preacher name")
	videoID := flag.String("video_id", "", "YouTube video ID")
	language := flag.String("lang", "en", "caption language")
	flag.Parse()

	if *title == "" || *videoID == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	application, err := app.New(app.Config{
		DatabaseURL:     dsn,
		CaptionLanguage: *language,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	transcript, found, err := application.GetTranscript(ctx, *title, *preacher, *videoID)
	if err != nil {
		log.Fatalf("transcript lookup failed: %v", err)
	}
	if !found {
		log.Fatalf("no transcript found for video %s", *videoID)
	}
	fmt.Println(transcript)
}

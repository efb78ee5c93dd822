package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusattend/internal/aiclient"
	"campusattend/internal/attendance"
	"campusattend/internal/config"
	"campusattend/internal/queue"
	"campusattend/internal/roster"
	"campusattend/internal/store"
)

// Worker consumes face-detection events, labels the emotion through the
// AI service, and writes pipeline attendance records.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campus:detections")
	}

	rosterRepo := roster.NewRepository(db.Client)
	attRepo := attendance.NewRepository(db.Client)
	att := attendance.NewService(attRepo, rosterRepo, cfg.DedupWindow)
	ai := aiclient.New(cfg.AIServiceURL, cfg.AIServiceKey, cfg.AISkip)

	if !cfg.AISkip {
		if err := ai.Health(ctx); err != nil {
			log.Printf("WARNING: AI service not available: %v", err)
			log.Println("Worker will retry emotion labeling when events arrive")
		} else {
			log.Println("AI service connected")
		}
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for detections...")
	for msg := range messages {
		if msg.Type != "detection" {
			continue
		}

		var evt attendance.DetectionEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			log.Printf("bad detection payload: %v", err)
			continue
		}
		log.Printf("processing detection for persistent id %d", evt.PersistentID)

		// Emotion labeling is best effort; a failed call never drops
		// the presence event.
		emotion := ""
		if evt.ImageURL != "" {
			if result, err := ai.LabelEmotion(ctx, evt.ImageURL); err != nil {
				log.Printf("emotion labeling failed for %d: %v", evt.PersistentID, err)
			} else {
				emotion = result.Label
			}
		}

		at := time.Time{}
		if evt.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, evt.Timestamp); err == nil {
				at = parsed
			}
		}

		rec, err := att.RecordDetection(ctx, evt.PersistentID, at, evt.Subject, emotion)
		if err != nil {
			log.Printf("record detection failed for %d: %v", evt.PersistentID, err)
			continue
		}
		log.Printf("detection %s recorded for persistent id %d", rec.ID, evt.PersistentID)
	}

	log.Println("worker stopped")
}

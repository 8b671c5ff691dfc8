//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/routegrid-microservice/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	startLat := flag.Float64("start-lat", 6.7, "start latitude")
	startLon := flag.Float64("start-lon", 80.06, "start longitude")
	withEnd := flag.Bool("with-end", true, "send the example end point instead of looking one up")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.GridBuildEvent{
		RequestID: uuid.New(),
		Start:     domain.GeoPoint{Lat: *startLat, Lon: *startLon},
	}
	if *withEnd {
		event.End = &domain.GeoPoint{Lat: 6.710755, Lon: 80.064272}
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamGridBuild,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamGridBuild)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Request ID: %s\n", event.RequestID)
	fmt.Printf("   Start: %s\n", event.Start)

	fmt.Printf("\nWaiting for response in %s...\n", domain.StreamGridDone)

	timeout := time.After(60 * time.Second)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for response")
			return
		case <-ticker.C:
			results, err := client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{domain.StreamGridDone, "0"},
				Count:   100,
				Block:   -1,
			}).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				continue
			}

			for _, stream := range results {
				for _, msg := range stream.Messages {
					dataStr, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}

					var done domain.GridDoneEvent
					if err := json.Unmarshal([]byte(dataStr), &done); err != nil {
						continue
					}
					if done.RequestID != event.RequestID {
						continue
					}

					if done.ErrorCode != "" {
						fmt.Printf("\nBuild failed: %s: %s\n", done.ErrorCode, done.Error)
						return
					}
					fmt.Printf("\nGrid received: %d x %d, start %s, end %s\n",
						done.Result.Grid.Height, done.Result.Grid.Width,
						done.Result.StartIndex, done.Result.EndIndex)
					if done.ConnectionPoint != nil {
						fmt.Printf("Connection point: %s %d at %s\n",
							done.ConnectionPoint.Kind, done.ConnectionPoint.OSMID, done.ConnectionPoint.Location)
					}
					return
				}
			}
		}
	}
}

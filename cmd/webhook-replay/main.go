package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"yakmarket-admin-bot/internal/config"
)

// Posts a synthetic entry.create product event to a running bot, the same
// shape the CMS sends, so the notification flow can be checked by hand.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	target := flag.String("url", "", "webhook url (default http://localhost:<webhook.port><webhook.path>)")
	title := flag.String("title", "Test product", "product title")
	price := flag.String("price", "100", "product price")
	image := flag.String("image", "", "image url, relative urls are resolved by the bot")
	id := flag.String("id", "", "product id (default: random)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if *target == "" {
		*target = fmt.Sprintf("http://localhost:%d%s", cfg.Webhook.Port, cfg.Webhook.Path)
	}
	if *id == "" {
		*id = ulid.Make().String()
	}

	entry := map[string]any{
		"id":          *id,
		"title":       *title,
		"price":       *price,
		"description": "Sent by webhook-replay at " + time.Now().Format(time.RFC3339),
	}
	if *image != "" {
		entry["image"] = map[string]string{"url": *image}
	}
	body, err := json.Marshal(map[string]any{
		"event": "entry.create",
		"model": "product",
		"entry": entry,
	})
	if err != nil {
		log.Fatalf("encode event: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *target, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.Webhook.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Webhook.Secret)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("post webhook: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Printf("product %s -> %s %s\n", *id, resp.Status, bytes.TrimSpace(out))
}

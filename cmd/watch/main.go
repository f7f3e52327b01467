package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stormwatch.io/internal/client"
	"stormwatch.io/internal/store"
)

func main() {
	var (
		baseURL  = flag.String("server", envOr("STORMWATCH_SERVER", "http://localhost:8080"), "stormwatch server base URL")
		email    = flag.String("email", envOr("STORMWATCH_EMAIL", "demo@example.com"), "account email")
		password = flag.String("password", envOr("STORMWATCH_PASSWORD", "password123"), "account password")
		city     = flag.String("city", "", "city to watch (optional; keeps the saved city when empty)")
	)
	flag.Parse()

	c, err := client.New(*baseURL)
	if err != nil {
		log.Fatalf("build client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	sess, err := c.Login(ctx, *email, *password)
	cancel()
	if err != nil {
		log.Fatalf("login as %s: %v", *email, err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sess.Close(ctx); err != nil {
			log.Printf("logout: %v", err)
		}
	}()

	if *city != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.SetCity(ctx, sess, store.City{CityName: *city})
		cancel()
		if err != nil {
			log.Fatalf("set city %q: %v", *city, err)
		}
		fmt.Printf("watching alerts for %s\n", *city)
	}

	watcher, err := c.WatchAlerts(context.Background(), sess)
	if err != nil {
		log.Fatalf("open realtime channel: %v", err)
	}
	defer watcher.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("connected as %s, waiting for alerts (ctrl-c to quit)\n", sess.User().Name)
	for {
		select {
		case a, ok := <-watcher.Alerts():
			if !ok {
				log.Println("realtime connection closed")
				return
			}
			fmt.Printf("[%s] %s: %s\n", a.AlertSeverity, a.CityName, a.AlertMessage)
		case <-sess.Done():
			log.Println("session ended")
			return
		case <-stop:
			fmt.Println("bye")
			return
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"doorbird"
	"doorbird/config"
	"doorbird/internal/events"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	relay := flag.Int("relay", 1, "relay index for open-door")
	flag.Parse()

	// Env references in the config file may come from a local .env.
	_ = godotenv.Load()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	setupLogger(cfg.Log)

	if cfg.Doorbird.Host == "" {
		log.Fatal().Msg("doorbird host is not configured")
	}

	timeout, err := time.ParseDuration(cfg.Doorbird.Timeout)
	if err != nil {
		log.Warn().Err(err).Str("value", cfg.Doorbird.Timeout).Msg("invalid timeout, using default")
		timeout = 15 * time.Second
	}

	client := doorbird.NewClientWithHTTPClient(
		cfg.Doorbird.Host,
		cfg.Doorbird.Username,
		cfg.Doorbird.Password,
		&http.Client{Timeout: timeout},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
	}()

	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(2)
	}

	if err := run(ctx, command, client, cfg, *relay); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

func run(ctx context.Context, command string, client *doorbird.Client, cfg *config.Config, relay int) error {
	switch command {
	case "ready":
		ok, status, err := client.Ready(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("ready=%t status=%d\n", ok, status)

	case "info":
		info, err := client.Info(ctx)
		if err != nil {
			return err
		}
		return printJSON(info)

	case "open-door":
		ok, err := client.EnergizeRelay(ctx, relay)
		if err != nil {
			return err
		}
		fmt.Printf("relay=%d energized=%t\n", relay, ok)

	case "light-on":
		ok, err := client.TurnLightOn(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("light=%t\n", ok)

	case "doorbell":
		pressed, err := client.DoorbellState(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("pressed=%t\n", pressed)

	case "motion":
		motion, err := client.MotionSensorState(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("motion=%t\n", motion)

	case "urls":
		fmt.Println(client.LiveVideoURL())
		fmt.Println(client.LiveImageURL())
		fmt.Println(client.RTSPLiveVideoURL(false))
		fmt.Println(client.HTML5ViewerURL())

	case "favorites":
		favorites, err := client.Favorites(ctx)
		if err != nil {
			return err
		}
		return printJSON(favorites)

	case "notifications":
		notifications, err := client.Notifications(ctx)
		if err != nil {
			return err
		}
		return printJSON(notifications)

	case "schedule":
		entries, err := client.Schedule(ctx)
		if err != nil {
			return err
		}
		return printJSON(entries)

	case "listen":
		return listen(ctx, client, cfg)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

// listen starts the event receiver, points the device's notifications at it
// and prints events until interrupted.
func listen(ctx context.Context, client *doorbird.Client, cfg *config.Config) error {
	srv := events.NewServer(cfg.Events.ListenAddr, cfg.Events.Token, log.Logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Stop()

	if cfg.Events.ExternalURL == "" {
		log.Warn().Msg("events.external_url not set, skipping device subscription")
	} else {
		eventTypes := []string{doorbird.EventDoorbell, doorbird.EventMotionSensor, doorbird.EventDoorOpen}
		for _, event := range eventTypes {
			ok, err := client.SubscribeNotification(ctx, doorbird.NotificationSubscription{
				Event:      event,
				URL:        srv.CallbackURL(cfg.Events.ExternalURL, event),
				Relaxation: cfg.Events.Relaxation,
			})
			if err != nil {
				return fmt.Errorf("subscribing %s: %w", event, err)
			}
			if !ok {
				log.Warn().Str("event", event).Msg("device rejected subscription")
			}
		}
	}

	for {
		ev, err := srv.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Printf("%s event=%s from=%s\n", ev.Time.Format(time.RFC3339), ev.Type, ev.RemoteAddr)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: doorbird [flags] <command>

commands:
  ready          test the connection to the device
  info           print device version information
  open-door      energize a relay (-relay N, default 1)
  light-on       energize the light relay
  doorbell       print the doorbell state
  motion         print the motion sensor state
  urls           print the live media URLs (they embed credentials)
  favorites      print the favorites stored on the device
  notifications  print the notification settings
  schedule       print the schedule entries
  listen         receive device event callbacks until interrupted
`)
	flag.PrintDefaults()
}

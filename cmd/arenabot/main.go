package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/grapple-arena/client"
	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/shared/messages"
	"github.com/automoto/grapple-arena/shared/protocol"
)

func main() {
	addr := flag.String("addr", "localhost:7373", "Server address")
	name := flag.String("name", "bot", "Player name")
	version := flag.String("version", "", "Client version sent in the join request")
	configPath := flag.String("config", "", "TOML config file for bot tuning")
	difficulty := flag.String("difficulty", "", "Bot difficulty: easy, normal or hard (overrides config)")
	seed := flag.Int64("seed", 42, "Random seed for bot decisions")
	token := flag.String("token", "", "Reconnect token from an earlier session")
	flag.Parse()

	cfg, err := config.Load(*configPath, config.DefaultEnvFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *difficulty != "" {
		cfg.Bot.Difficulty = *difficulty
	}
	tuning, err := cfg.Bot.Tuning()
	if err != nil {
		log.Fatalf("Invalid bot difficulty: %v", err)
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	c := client.NewClient()
	c.Connect(*addr, messages.JoinRequest{
		Version:    *version,
		PlayerName: *name,
		Color:      [4]uint8{uint8(*seed * 53), uint8(*seed * 97), uint8(*seed * 193), 255},

		ReconnectToken: *token,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(max(tuning.ReactionMillis, 16)) * time.Millisecond)
	defer ticker.Stop()

	var bot *client.Bot
	var view client.View
	log.Printf("[bot] %s connecting to %s (%s)", *name, *addr, cfg.Bot.Difficulty)

	for {
		select {
		case <-sigChan:
			log.Println("[bot] shutting down")
			c.Disconnect()
			return
		case <-ticker.C:
		}

		switch c.State() {
		case client.StateError:
			log.Fatalf("[bot] %v", c.LastError())
		case client.StateJoinedGame:
		default:
			continue
		}

		if bot == nil {
			acc := c.Accepted()
			log.Printf("[bot] joined %s as player %d (token %s)", acc.ServerName, acc.PlayerID, acc.ReconnectToken)
			bot = client.NewBot(tuning, acc.PlayerID, *seed)
		}

		for _, evt := range c.DrainEvents() {
			switch e := evt.(type) {
			case messages.KillFeed:
				log.Printf("[bot] %s killed %s", e.AttackerName, e.VictimName)
			case messages.Rankings:
				for i, r := range e.Entries {
					log.Printf("[bot] #%d %s %d pts (%d/%d)", i+1, r.Name, r.Points, r.Kills, r.Deaths)
				}
			case messages.MatchPhaseChanged:
				log.Printf("[bot] phase %s", e.Phase)
			}
		}

		if snap := c.LatestSnapshot(); snap != nil {
			view = client.DecodeSnapshot(*snap)
		}
		for _, msg := range bot.Decide(view) {
			if err := c.SendMessage(msg); err != nil {
				log.Printf("[bot] send %T failed: %v", msg, err)
			}
		}
	}
}

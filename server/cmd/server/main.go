package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/grapple-arena/assets"
	"github.com/automoto/grapple-arena/config"
	"github.com/automoto/grapple-arena/server/core"
	"github.com/automoto/grapple-arena/shared/protocol"
)

func main() {
	configPath := flag.String("config", "", "TOML config file (empty = built-in defaults)")
	envFile := flag.String("env", config.DefaultEnvFile, "Env file with ARENA_* overrides")
	port := flag.Uint("port", 0, "Server port")
	tickRate := flag.Int("tickrate", 0, "Server tick rate (updates per second)")
	name := flag.String("name", "", "Server display name")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	level := flag.String("level", "", "Level to load")
	master := flag.String("master", "", "Master server URL (empty = no registration)")
	printSchema := flag.Bool("print-schema", false, "Print the config file JSON schema and exit")
	printConfig := flag.Bool("print-config", false, "Print the effective config as TOML and exit")
	flag.Parse()

	if *printSchema {
		schema, err := config.Schema()
		if err != nil {
			log.Fatalf("Failed to build schema: %v", err)
		}
		fmt.Println(string(schema))
		return
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "tickrate":
			cfg.Server.TickRate = *tickRate
		case "name":
			cfg.Server.Name = *name
		case "version":
			cfg.Server.Version = *version
		case "level":
			cfg.Server.Level = *level
		case "master":
			cfg.Server.MasterURL = *master
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *printConfig {
		out, err := config.Encode(cfg)
		if err != nil {
			log.Fatalf("Failed to encode config: %v", err)
		}
		fmt.Print(string(out))
		return
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	lvl, err := core.LoadServerLevel(assets.FS(), cfg.Server.Level)
	if err != nil {
		log.Fatalf("Failed to load level: %v", err)
	}

	history, err := core.OpenHistory(cfg.Server.HistoryApp, cfg.Server.HistorySize)
	if err != nil {
		log.Printf("Warning: match history disabled: %v", err)
		history = nil
	} else {
		history.LogSummary()
	}

	server, err := core.NewServer(cfg, lvl, history)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	var reg *core.Registration
	if cfg.Server.MasterURL != "" {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		reg = core.NewRegistration(cfg.Server.MasterURL, cfg.Server.Name, address, cfg.Server.Version, lvl.Name, server)
		reg.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		if reg != nil {
			reg.Stop()
		}
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting arena server %q on port %d (tick rate: %d/s, version: %q, level: %s, capacity: %d)",
		cfg.Server.Name, cfg.Server.Port, cfg.Server.TickRate, cfg.Server.Version, lvl.Name, cfg.Match.Capacity)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

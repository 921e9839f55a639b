package main

import (
	"context"
	"flag"
	"log"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mazebound/server/internal/grid"
	"mazebound/server/internal/level"
	simnet "mazebound/server/internal/net"
	"mazebound/server/internal/sim"
	"mazebound/server/logging"
	"mazebound/server/logging/sinks"
)

// serverConfig collects the runtime knobs of the server binary.
type serverConfig struct {
	Addr      string
	LevelPath string
	TickRate  int
	Seed      int64
	Watch     bool
}

// normalized fills in defaults for unset or nonsensical values.
func (cfg serverConfig) normalized() serverConfig {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.LevelPath == "" {
		cfg.LevelPath = "levels/classic.yaml"
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}
	return cfg
}

func main() {
	var cfg serverConfig
	flag.StringVar(&cfg.Addr, "addr", ":8080", "listen address for the spectator surface")
	flag.StringVar(&cfg.LevelPath, "level", "levels/classic.yaml", "level document to run")
	flag.IntVar(&cfg.TickRate, "tick", 60, "simulation ticks per second")
	flag.Int64Var(&cfg.Seed, "seed", 1, "world RNG seed")
	flag.BoolVar(&cfg.Watch, "watch", false, "reload the level document on change")
	flag.Parse()
	cfg = cfg.normalized()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	router := logging.NewRouter(nil, logging.DefaultConfig(), sinks.NewConsoleSink(os.Stdout))
	defer router.Close(context.Background())

	lvl, err := level.Load(cfg.LevelPath)
	if err != nil {
		logger.Fatalf("load level: %v", err)
	}

	world := sim.NewWorld(lvl, sim.WithSeed(cfg.Seed), sim.WithPublisher(router))

	hub := simnet.NewHub(logger)
	handler := simnet.NewHandler(hub, logger)
	mux := nethttp.NewServeMux()
	handler.Routes(mux)

	go func() {
		logger.Printf("listening on %s", cfg.Addr)
		if err := nethttp.ListenAndServe(cfg.Addr, mux); err != nil {
			logger.Fatalf("http server: %v", err)
		}
	}()

	reloads := make(chan *level.Level, 1)
	if cfg.Watch {
		watcher, err := level.NewWatcher(cfg.LevelPath)
		if err != nil {
			logger.Fatalf("watch level: %v", err)
		}
		defer watcher.Close()
		go func() {
			for range watcher.Events {
				fresh, err := level.Load(cfg.LevelPath)
				if err != nil {
					logger.Printf("reload rejected: %v", err)
					continue
				}
				select {
				case reloads <- fresh:
				default:
				}
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.TickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			stats := router.Stats()
			logger.Printf("shutting down: %d events logged, %d dropped", stats.EventsTotal, stats.DroppedTotal)
			return
		case fresh := <-reloads:
			logger.Printf("level reloaded: %s", fresh.Name)
			world = sim.NewWorld(fresh, sim.WithSeed(cfg.Seed), sim.WithPublisher(router))
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			for _, cmd := range hub.Drain() {
				applyCommand(world, cmd)
			}
			world.Advance(dt)
			hub.Broadcast(world.Snapshot())
		}
	}
}

func applyCommand(world *sim.World, cmd simnet.Command) {
	switch cmd.Type {
	case simnet.CommandFrighten:
		world.SetFrightened(true)
	case simnet.CommandCalm:
		world.SetFrightened(false)
	case simnet.CommandKill:
		world.Kill(cmd.AgentID)
	case simnet.CommandRespawn:
		world.Respawn(cmd.AgentID)
	case simnet.CommandReset:
		world.Reset()
	case simnet.CommandTracked:
		world.SetTracked(
			grid.Vec2{X: cmd.X, Z: cmd.Z},
			grid.Vec2{X: cmd.HeadingX, Z: cmd.HeadingZ}.Normalized(),
		)
	}
}

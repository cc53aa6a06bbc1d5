// Command parklogic runs a headless parking traffic simulation: it
// generates a procedural road network, spawns a mixed fleet of combustion
// and electric vehicles, and records the session to the configured
// storage backend.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/lst-cpp-project-2025-2026/parklogic/internal/bus"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/config"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/database"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/entity"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/influx"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/layout"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/logging"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/recorder"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/route"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/sim"
	"github.com/lst-cpp-project-2025-2026/parklogic/internal/traffic"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "parklogic:", err)
		os.Exit(1)
	}
}

func run() error {
	configDir := "."
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	if err := config.Load(configDir); err != nil {
		return err
	}

	sessionStart := time.Now()

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, "parklogic", sessionStart))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	logManager := logging.NewSlogManager()
	logManager.Setup(logFile, config.GetString("logLevel"))
	log := logManager.Logger()

	zlog := zerolog.New(logFile).With().Timestamp().Logger()

	simCfg := config.GetSimConfig()
	seed := simCfg.Seed
	if seed == 0 {
		seed = sessionStart.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.Info("Session starting", "seed", seed)

	// World generation.
	mapCfg := config.GetMapConfig()
	gen := layout.New(rng, log)
	world, modules := gen.Generate(layout.Config{
		SmallParking:     mapCfg.SmallParking,
		LargeParking:     mapCfg.LargeParking,
		SmallCharging:    mapCfg.SmallCharging,
		LargeCharging:    mapCfg.LargeCharging,
		ParkingPriceMin:  mapCfg.ParkingPriceMin,
		ParkingPriceMax:  mapCfg.ParkingPriceMax,
		ChargingPriceMin: mapCfg.ChargingPriceMin,
		ChargingPriceMax: mapCfg.ChargingPriceMax,
	})
	arena := entity.NewArena(modules)
	registry := entity.NewRegistry()
	log.Info("World generated",
		"modules", arena.Len(), "facilities", len(arena.Facilities()),
		"width", world.Width, "height", world.Height)

	// Event bus and planners.
	eventBus, err := bus.New(logging.NewBusLogger(log))
	if err != nil {
		return fmt.Errorf("creating event bus: %w", err)
	}
	planner := route.NewPlanner(arena, log)

	// Storage backend.
	dbm := database.NewManager(zlog)
	backend, err := recorder.NewBackend(dbm)
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer backend.Close()

	// Telemetry sink.
	var ifx *influx.Manager
	if viper.GetBool("influx.enabled") {
		ifx = influx.NewManager(zlog)
		if err := ifx.Connect(); err != nil {
			log.Error("influx connect failed, telemetry disabled", "error", err)
			ifx = nil
		} else {
			defer ifx.Close()
		}
	}

	// Session row.
	layoutJSON, err := recorder.EncodeLayout(modules)
	if err != nil {
		return err
	}
	session := &recorder.Session{
		StartedAt:   sessionStart,
		Seed:        seed,
		WorldWidth:  world.Width,
		WorldHeight: world.Height,
		Layout:      layoutJSON,
	}
	if err := backend.StartSession(session); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	// Fleet policy and loop.
	params := traffic.DefaultParams()
	params.ElectricShare = simCfg.ElectricShare
	params.PriceSeekerShare = simCfg.PriceSeekerShare
	traffic.NewOrchestrator(eventBus, arena, registry, planner, rng, log, params)
	recorder.NewRecorder(eventBus, backend, arena, registry, ifx, log)

	spawnInterval, err := time.ParseDuration(simCfg.SpawnInterval)
	if err != nil {
		return fmt.Errorf("parsing sim.spawnInterval: %w", err)
	}
	duration, err := time.ParseDuration(simCfg.Duration)
	if err != nil {
		return fmt.Errorf("parsing sim.duration: %w", err)
	}

	loop, err := sim.NewLoop(eventBus, arena, registry, world, rng, log,
		simCfg.TickRate, spawnInterval)
	if err != nil {
		return fmt.Errorf("creating simulation loop: %w", err)
	}

	// Sanity-check the spawn pipeline before running: a topic without a
	// subscriber means a wiring step above went missing.
	for _, topic := range []bus.Topic{
		traffic.TopicSpawnRequest,
		traffic.TopicVehicleCreate,
		traffic.TopicVehicleSpawned,
		traffic.TopicSimulationTick,
	} {
		if !eventBus.HasSubscribers(topic) {
			return fmt.Errorf("no subscriber for %s", topic)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := loop.Run(ctx, duration)

	if err := backend.EndSession(); err != nil {
		log.Error("ending session failed", "error", err)
	}

	report(log, arena, registry, loop)
	return runErr
}

// report prints the end-of-session summary.
func report(log *slog.Logger, arena *entity.Arena, registry *entity.Registry, loop *sim.Loop) {
	var free, reserved, occupied int
	for _, idx := range arena.Facilities() {
		c := arena.Module(idx).Counts()
		free += c.Free
		reserved += c.Reserved
		occupied += c.Occupied
	}
	log.Info("Session report",
		"ticks", loop.Tick(),
		"simulatedSeconds", loop.Elapsed(),
		"liveVehicles", registry.Len(),
		"parkedVehicles", recorder.ParkedCount(registry),
		"spotsFree", free,
		"spotsReserved", reserved,
		"spotsOccupied", occupied,
	)
}

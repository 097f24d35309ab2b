package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/daemonp/powerwidget2mqtt/internal/config"
	"github.com/daemonp/powerwidget2mqtt/internal/device"
	"github.com/daemonp/powerwidget2mqtt/internal/device/sim"
	"github.com/daemonp/powerwidget2mqtt/internal/homeassistant"
	"github.com/daemonp/powerwidget2mqtt/internal/log"
	"github.com/daemonp/powerwidget2mqtt/internal/mqtt"
	"github.com/daemonp/powerwidget2mqtt/internal/panel"
	"github.com/daemonp/powerwidget2mqtt/internal/store"
	"github.com/daemonp/powerwidget2mqtt/internal/stream"
	"github.com/daemonp/powerwidget2mqtt/internal/subsystem"
	"github.com/daemonp/powerwidget2mqtt/internal/types"
)

func main() {
	configFile := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewLogger(cfg.Log)

	storePath := cfg.Simulator.StorePath
	if storePath == "" {
		storePath, err = store.DefaultPath()
		if err != nil {
			logger.Fatal("Failed to resolve settings path: %v", err)
		}
	}
	settings, err := store.Open(storePath)
	if err != nil {
		logger.Fatal("Failed to open settings: %v", err)
	}
	logger.Info("Using settings file %s", settings.Path())

	levels := subsystem.BrightnessLevels{
		Minimum:   cfg.Panel.Brightness.Minimum,
		Default:   cfg.Panel.Brightness.Default,
		Maximum:   cfg.Panel.Brightness.Maximum,
		Threshold: cfg.Panel.Brightness.Threshold,
	}
	if err := settings.SetDefaultInt(device.KeyScreenBrightness, levels.Default); err != nil {
		logger.Warning("Failed to seed brightness: %v", err)
	}

	dev := sim.New(settings, sim.Options{
		Transition:     time.Duration(*cfg.Simulator.TransitionMS) * time.Millisecond,
		WifiAvailable:  *cfg.Simulator.WifiAvailable,
		RadioAvailable: *cfg.Simulator.RadioAvailable,
		TickleFails:    cfg.Simulator.TickleFails,
	}, logger)

	adapters := panel.Adapters{
		types.ButtonNetwork:    subsystem.NewNetwork(dev, logger),
		types.ButtonBrightness: subsystem.NewBrightness(settings, dev, levels, logger),
		types.ButtonSync:       subsystem.NewSync(dev, dev, logger),
		types.ButtonLocation:   subsystem.NewLocation(settings, cfg.Panel.LocationProvider, logger),
		types.ButtonRadio:      subsystem.NewRadio(dev.RadioManager, logger),
	}

	// Create panel
	p := panel.NewPanel(adapters, nil, logger)

	mqttClient := mqtt.NewMQTT(&cfg.MQTT, p, logger)
	p.AddRenderer(mqttClient)

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub(logger)
		p.AddRenderer(hub)
	}

	// Connect to MQTT broker
	if err := mqttClient.Connect(); err != nil {
		dev.Close()
		logger.Fatal("Failed to connect to MQTT broker: %v", err)
	}

	if cfg.HomeAssistant.Discovery {
		ha := homeassistant.New(&cfg.HomeAssistant, mqttClient, logger)
		ha.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()

	// Settled power transitions arrive out of band.
	go func() {
		defer wg.Done()
		p.Forward(ctx, dev.Events())
	}()

	if hub != nil {
		wg.Add(2)
		go func() {
			defer wg.Done()
			hub.Run(ctx)
		}()
		go func() {
			defer wg.Done()
			srv := stream.NewServer(hub, p, logger)
			if err := srv.ListenAndServe(ctx, cfg.Stream.Listen, cfg.Stream.Path); err != nil {
				logger.Error("Stream server stopped: %v", err)
			}
		}()
	}

	// Wait for termination signal
	<-ctx.Done()

	logger.Info("Shutting down...")
	mqttClient.Close()
	wg.Wait()
	dev.Close()
}

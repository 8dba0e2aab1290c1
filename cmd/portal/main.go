package main

import (
	"flag"
	"log"
	"runtime"

	"github.com/gekko3d/portal"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := portal.DefaultConfig()
	if *configPath != "" {
		loaded, err := portal.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	cfg.Debug = cfg.Debug || *debug

	app := portal.NewAppBuilder().
		UseModule(portal.LoggingModule{Prefix: "portal", Debug: cfg.Debug}).
		UseModule(portal.TimeModule{}).
		UseModule(portal.WindowModule{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Title:  cfg.Window.Title,
		}).
		UseModule(portal.PortalModule{Config: cfg}).
		Build()

	window := portal.MustResource[portal.WindowState](app)
	defer window.Destroy()
	defer portal.MustResource[portal.Surface](app).Release()

	if err := app.Run(portal.WindowDriver{Window: window}); err != nil {
		app.Logger().Errorf("%v", err)
	}
}

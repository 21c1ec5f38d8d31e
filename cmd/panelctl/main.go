package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"panelctl/internal/board"
	"panelctl/internal/config"
	appLog "panelctl/internal/log"
	"panelctl/internal/schedule"
	"panelctl/internal/service"
	"panelctl/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	sim        bool
	once       bool
}

func main() {
	appLog.Info("panelctl starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override the file.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.sim {
		conf.Transport.Kind = config.TransportSim
	}
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"panel", conf.Panel,
		"transport", conf.Transport.Kind,
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"schedule_rules", len(conf.Schedule),
		"once", flags.once,
	)

	b, err := board.Open(conf)
	if err != nil {
		appLog.Error("failed to open board", err, "panel", conf.Panel)
		os.Exit(1)
	}
	defer b.Close()
	svc := service.New(b.Panel, b.Backlight)

	if flags.once {
		code := runOnce(svc)
		_ = b.Close()
		os.Exit(code)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := svc.PowerOn(); err != nil {
		appLog.Error("panel power on failed", err)
	}

	sched, err := schedule.New(svc, conf.Schedule, conf.Location())
	if err != nil {
		appLog.Error("invalid schedule", err)
		_ = svc.PowerOff()
		os.Exit(1)
	}
	sched.Start()
	if sched.Len() > 0 {
		appLog.Info("schedule started", "rules", sched.Len(), "next", sched.Next().Format(time.RFC3339))
	}

	webErr := make(chan error, 1)
	if conf.Listen != "" {
		go func() { webErr <- web.Serve(ctx, conf, svc) }()
	}

	select {
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	case err := <-webErr:
		appLog.Error("HTTP server stopped", err)
		cancel()
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	sched.Stop(stopCtx)

	// The panel has to reach blank before the rails go away with the process.
	if err := svc.PowerOff(); err != nil {
		appLog.Error("panel power off failed", err)
	}
	appLog.Info("panelctl exiting")
}

// runOnce powers the panel up, logs what was detected and powers it down.
func runOnce(svc *service.Service) int {
	code := 0
	if err := svc.PowerOn(); err != nil {
		appLog.Error("panel power on failed", err)
		code = 1
	}
	st := svc.Status()
	appLog.Info("panel status",
		"model", st.Model,
		"state", st.State,
		"revision", st.Revision,
		"identity", st.Identity,
		"voltage_faults", len(st.VoltageFaults),
	)
	if err := svc.PowerOff(); err != nil {
		appLog.Error("panel power off failed", err)
		code = 1
	}
	return code
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/panelctl/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.sim, "sim", false, "Use the simulated panel instead of hardware")
	flag.BoolVar(&cfg.once, "once", false, "Power the panel on, report it and power off")

	flag.Parse()

	return cfg
}

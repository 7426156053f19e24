package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"FuelWatch/internal/collector"
	"FuelWatch/internal/config"
	"FuelWatch/internal/heartbeat"
	"FuelWatch/internal/model"
	"FuelWatch/internal/notifier"
	"FuelWatch/internal/recorder"
	"FuelWatch/internal/runner"
	"FuelWatch/internal/scheduler"
	"FuelWatch/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	backfill := flag.Bool("backfill", false, "fetch an explicit date range instead of the daily collection")
	startDate := flag.String("start", "", "backfill start date (YYYY-MM-DD)")
	endDate := flag.String("end", "", "backfill end date (YYYY-MM-DD)")
	watch := flag.Bool("watch", false, "stay alive and run the collection on the configured cron")
	flag.Parse()

	// .env is optional; explicit environment variables win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] .env not loaded: %v", err)
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	fetcher := collector.NewFREDFetcher(cfg.FRED.BaseURL, cfg.FRED.APIKey, cfg.FRED.DieselSeriesID, cfg.FRED.CrudeSeriesID)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	sheet := store.NewExcelStore(cfg.Sheet.Path)
	tracker := heartbeat.NewTracker(cfg.Heartbeat.Path)

	var notif notifier.Notifier
	if len(cfg.Report.Recipients) > 0 {
		notif = notifier.NewEmailNotifier(
			cfg.Report.SMTP.Host, cfg.Report.SMTP.Port,
			cfg.Report.SMTP.Username, cfg.Report.SMTP.Password, cfg.Report.SMTP.From,
			cfg.Report.Recipients, cfg.Report.Subject,
		)
	} else {
		log.Println("[WARN] no report recipients configured, report step disabled")
		notif = notifier.NewNoopNotifier()
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	run := runner.New(fetcher, sheet, tracker, notif, rec, cfg.Report.Weekday, cfg.FRED.LookbackDays)

	switch {
	case *backfill:
		if *startDate == "" || *endDate == "" {
			log.Fatalf("[FATAL] backfill requires -start and -end")
		}
		start, err := model.ParseDay(*startDate)
		if err != nil {
			log.Fatalf("[FATAL] bad -start: %v", err)
		}
		end, err := model.ParseDay(*endDate)
		if err != nil {
			log.Fatalf("[FATAL] bad -end: %v", err)
		}
		if err := run.RunBackfill(start, end); err != nil {
			log.Printf("[ERROR] backfill failed: %v", err)
			os.Exit(1)
		}

	case *watch:
		sched := scheduler.NewScheduler(run)
		if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
			log.Fatalf("[FATAL] register cron task: %v", err)
		}
		sched.Start()
		defer sched.Stop()

		log.Println("[INFO] FuelWatch is running. Press Ctrl+C to stop.")
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[INFO] shutdown signal received, stopping...")

	default:
		if err := run.Run(); err != nil {
			log.Printf("[ERROR] run failed: %v", err)
			os.Exit(1)
		}
	}
}

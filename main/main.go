package main

import (
	"github.com/apex/log"
	"github.com/joho/godotenv"

	"reportaqui/common"
	"reportaqui/config"
	"reportaqui/email"
	"reportaqui/localstore"
	"reportaqui/mapview"
	"reportaqui/metrics"
	"reportaqui/netwatch"
	"reportaqui/notify"
	"reportaqui/queue"
	"reportaqui/rabbitmq"
	"reportaqui/remote"
	"reportaqui/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := config.Load()
	metrics.Register()

	store, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer store.Close()

	db, err := common.DBConnect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to the remote store: %v", err)
	}
	defer db.Close()

	hub := notify.NewHub()
	go hub.Run()
	notifier := notify.Multi{notify.LogNotifier{}, hub}

	q := queue.NewQueue(store, notifier)
	q.Load()

	submitter := remote.NewSubmitter(
		remote.NewStore(db),
		remote.NewBlobStore(db, cfg.BlobBaseURL),
	)

	if cfg.AMQPURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			log.Errorf("Analysis publisher unavailable, continuing without it: %v", err)
		} else {
			defer publisher.Close()
			submitter.Publisher = publisher
		}
	}
	if cfg.SendGridAPIKey != "" {
		submitter.Forwarder = email.NewForwarder(cfg)
	}

	driver := queue.NewSyncDriver(q, submitter, notifier, cfg.SyncItemTimeout)

	monitor := netwatch.NewMonitor(cfg.ProbeURL, cfg.ProbeInterval)
	monitor.Subscribe(driver.SetOnline)
	monitor.Start()
	defer monitor.Stop()

	// Reports left over from a previous run are synced right away.
	if q.Len() > 0 {
		go func() {
			if err := driver.TriggerSync(); err != nil {
				log.Warnf("Startup sync skipped: %v", err)
			}
		}()
	}

	facilities := mapview.NewMySQLSource(db)

	srv := server.New(cfg, q, driver, submitter, monitor, facilities, hub)
	if err := srv.StartService(); err != nil {
		log.Fatalf("Service stopped: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/2beens/fitassist/internal/logging"
	"github.com/2beens/fitassist/internal/report"
	"github.com/2beens/fitassist/internal/report/backup"
)

// reports google drive backup cmd, meant to be run from cron

func main() {
	credentialsFile := flag.String(
		"gd-creds",
		"./drive-credentials.json",
		"google drive service account credentials json",
	)
	reportsDir := flag.String("reports-dir", "/var/lib/fitassist/reports", "directory of the disk reports store")
	folderName := flag.String("folder", backup.DefaultFolderName, "google drive backups folder name")
	logsPath := flag.String("logs-path", "/var/log/fitassist/reports-backup.log", "logs file path (empty for stdout)")
	logLevel := flag.String("log-level", "info", "log level [trace | debug | info | warn | error]")
	flag.Parse()

	logging.Setup(logging.LoggerSetupParams{
		LogFileName: *logsPath,
		LogToStdout: *logsPath == "",
		LogLevel:    *logLevel,
	})

	log.Println("starting reports backup ...")

	if *credentialsFile == "" {
		log.Fatalln("google drive credentials json not specified")
	}
	credentials, err := os.ReadFile(*credentialsFile)
	if err != nil {
		log.Fatalf("unable to read credentials file: %s", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reportsStore, err := report.NewDiskStore(*reportsDir)
	if err != nil {
		log.Fatalf("open reports dir: %s", err)
	}

	driveBackup, err := backup.NewDriveBackup(ctx, *folderName, option.WithCredentialsJSON(credentials))
	if err != nil {
		log.Fatalf("failed to create google drive backup: %s", err)
	}

	uploaded, err := driveBackup.Sync(ctx, reportsStore)
	if err != nil {
		log.Fatalf("reports backup failed: %s", err)
	}
	log.Printf("reports backup done, uploaded: %d", uploaded)
}

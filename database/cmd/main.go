package main

import (
	"flag"
	"os"

	"rsvp.link/configs"
	"rsvp.link/configs/configsdatabase"
	"rsvp.link/configs/configslog"
	"rsvp.link/database"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "run database migrations")
	seedFlag := flag.Bool("seed", false, "run database seeders")
	flag.Parse()

	cfg, err := configs.LoadConfig()
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("config load failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	configslog.InitLogger(cfg.IsProduction())
	defer configslog.SyncLogger()

	db, err := configsdatabase.Connect(cfg)
	if err != nil {
		configslog.SLog.Fatalf("database connection failed: %v", err)
	}
	defer configsdatabase.Close(db)

	configslog.SLog.Info("Running database initialization...")
	database.Initialize(db, *migrateFlag, *seedFlag)
	configslog.SLog.Info("Database initialization done.")
}

package main

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var db *sql.DB

func initDB(path string) error {
	var err error
	db, err = sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	createVisitorTable := `
	CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,  -- Store hashed IP instead of raw IP
		user_agent TEXT,
		path TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := db.Exec(createVisitorTable); err != nil {
		return fmt.Errorf("failed to create visitors table: %w", err)
	}

	createLaunchTable := `
	CREATE TABLE IF NOT EXISTS launches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		launch_id TEXT NOT NULL,
		demo TEXT NOT NULL,
		hashed_ip TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := db.Exec(createLaunchTable); err != nil {
		return fmt.Errorf("failed to create launches table: %w", err)
	}

	return nil
}

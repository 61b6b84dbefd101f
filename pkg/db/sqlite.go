package db

// use sqlite https://modernc.org/sqlite/

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-errors/errors"
	logger "github.com/labstack/gommon/log"
	_ "modernc.org/sqlite"
)

const (
	Memory              string = ":memory:"
	getCurrentMigration string = `PRAGMA user_version;`
	setCurrentMigration string = `PRAGMA user_version = ?;`
)

var log = logger.New("db")

func SetLogLevel(lvl logger.Lvl) {
	log.SetLevel(lvl)
}

type Sqlite struct {
	*sql.DB
	context context.Context
}

type migration struct {
	migrationName  string
	migrationQuery string
}

var migrations = []migration{
	{migrationName: "create generations table", migrationQuery: createGenerations},
	{migrationName: "index generations by creation time", migrationQuery: indexGenerationsCreated},
}

// sql statements
const (
	createGenerations = `
	CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		negative_prompt TEXT NOT NULL,
		guidance REAL NOT NULL,
		input_bytes INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)
	`

	indexGenerationsCreated = `
	CREATE INDEX IF NOT EXISTS generations_created_at ON generations (created_at)
	`
)

// New opens the ledger at filename, creating the file and running migrations.
// Use Memory for a throwaway database.
func New(ctx context.Context, filename string) (*Sqlite, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if filename != Memory {
		err := touchDBFile(filename)
		if err != nil {
			return nil, errors.WrapPrefix(err, "failed to create db file", 0)
		}
	}

	db, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, err
	}

	if filename == Memory {
		// every new connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	err = migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Sqlite{db, ctx}, nil
}

func (db *Sqlite) Context() context.Context {
	return db.context
}

func touchDBFile(filename string) error {
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		file, createErr := os.Create(filename)
		if createErr != nil {
			return createErr
		}

		closeErr := file.Close()
		if closeErr != nil {
			return closeErr
		}
	}

	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	var currentMigration int

	row := db.QueryRowContext(ctx, getCurrentMigration)

	err := row.Scan(&currentMigration)
	if err != nil {
		return err
	}

	requiredMigration := len(migrations)

	log.Debugf("Current DB version: %v, required DB version: %v", currentMigration, requiredMigration)

	if currentMigration < requiredMigration {
		for migrationNum := currentMigration + 1; migrationNum <= requiredMigration; migrationNum++ {
			err = execMigration(ctx, db, migrationNum)
			if err != nil {
				log.Errorf("Error running migration %v '%v'", migrationNum, migrations[migrationNum-1].migrationName)

				return err
			}
		}
	}

	return nil
}

func execMigration(ctx context.Context, db *sql.DB, migrationNum int) error {
	log.Infof("Running migration %v '%v'", migrationNum, migrations[migrationNum-1].migrationName)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	//nolint
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, migrations[migrationNum-1].migrationQuery)
	if err != nil {
		return err
	}

	setQuery := strings.Replace(setCurrentMigration, "?", strconv.Itoa(migrationNum), 1)

	_, err = tx.ExecContext(ctx, setQuery)
	if err != nil {
		return err
	}

	return tx.Commit()
}

var nilDatabase = errors.New("database error")

const timeout = 15 * time.Second

// Error reports whether db is usable.
func Error(db *Sqlite) error {
	if db == nil {
		return nilDatabase
	}
	ctx, cancel := context.WithTimeout(db.Context(), timeout)
	defer cancel()
	return db.PingContext(ctx)
}

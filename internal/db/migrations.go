package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/erazemk/phonestock/internal/logger"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

// gooseDialects maps our driver names to goose dialects.
var gooseDialects = map[string]string{
	DriverSQLite: "sqlite3",
	DriverMySQL:  "mysql",
}

func migrationsDir(driver string) string {
	return "migrations/" + driver
}

func prepareGoose(driver string, logg *logger.Logger) error {
	dialect, ok := gooseDialects[driver]
	if !ok {
		return fmt.Errorf("unsupported driver %q", driver)
	}
	goose.SetBaseFS(migrationsFS)
	if logg == nil {
		goose.SetLogger(goose.NopLogger())
	} else {
		goose.SetLogger(&gooseLogger{logg: logg})
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Migrate applies all pending migrations for the driver.
func Migrate(ctx context.Context, db *sql.DB, driver string, logg *logger.Logger) error {
	if err := prepareGoose(driver, logg); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, migrationsDir(driver)); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Run executes an arbitrary goose command (status, up, down, version, ...).
func Run(ctx context.Context, db *sql.DB, driver, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := prepareGoose(driver, nil); err != nil {
		return err
	}
	goose.SetLogger(stdoutLogger{})
	if err := goose.RunContext(ctx, command, db, migrationsDir(driver), args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

type gooseLogger struct {
	logg *logger.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.logg.Info(context.Background(), fmt.Sprintf(format, v...))
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.logg.Error(context.Background(), "migration failed", fmt.Errorf(format, v...))
	os.Exit(1)
}

type stdoutLogger struct{}

func (stdoutLogger) Printf(format string, v ...any) {
	fmt.Fprintln(os.Stdout, strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
}

func (stdoutLogger) Fatalf(format string, v ...any) {
	fmt.Fprintln(os.Stderr, strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
	os.Exit(1)
}

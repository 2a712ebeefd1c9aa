package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// projectRoot walks up from the working directory to the go.mod file
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}
		if wd == filepath.Dir(wd) {
			return "", errors.New("go.mod not found in any parent directory")
		}
		wd = filepath.Dir(wd)
	}
}

// NewTestDB starts postgres in a container, applies db/migrations and
// returns the connection with a function emptying the upload journal.
// The container is terminated when the test ends.
func NewTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:13-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpassword",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("could not get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("could not get container port: %v", err)
	}
	dbURL := fmt.Sprintf("postgres://testuser:testpassword@%s:%s/testdb?sslmode=disable", host, port.Port())

	root, err := projectRoot()
	if err != nil {
		t.Fatalf("could not find project root: %v", err)
	}
	source := &url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(root, "db", "migrations"))}

	m, err := migrate.New(source.String(), dbURL)
	if err != nil {
		t.Fatalf("failed to init migrate with %s: %v", source, err)
	}
	// postgres may accept connections before it is ready to run DDL
	for attempt := 0; ; attempt++ {
		err = m.Up()
		if err == nil || errors.Is(err, migrate.ErrNoChange) {
			break
		}
		if attempt == 5 {
			t.Fatalf("failed to run up migrations: %v", err)
		}
		time.Sleep(time.Second)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	truncate := func() {
		if _, err := db.Exec(`TRUNCATE TABLE upload_record`); err != nil {
			t.Fatalf("failed to truncate upload_record: %v", err)
		}
	}
	return db, truncate
}

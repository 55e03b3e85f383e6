// Package common provides shared test infrastructure
package common

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	pgOnce      sync.Once
	pgContainer *PostgresContainer
	pgError     error
)

const (
	pgUser     = "dashboard"
	pgPassword = "dashboard"
	pgDatabase = "dashboard"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

// DockerEnabled reports whether container-backed tests were requested.
func DockerEnabled() bool {
	return os.Getenv("DASHBOARD_TEST_DOCKER") == "true"
}

// StartPostgres starts a shared Postgres container for the test run, or
// skips the test when DASHBOARD_TEST_DOCKER is not "true".
func StartPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if !DockerEnabled() {
		t.Skip("set DASHBOARD_TEST_DOCKER=true to run Postgres container tests")
	}

	pgOnce.Do(func() {
		ctx := context.Background()

		req := testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		}

		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if err != nil {
			pgError = fmt.Errorf("start Postgres container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			container.Terminate(ctx)
			pgError = fmt.Errorf("get Postgres host: %w", err)
			return
		}

		mappedPort, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			container.Terminate(ctx)
			pgError = fmt.Errorf("get Postgres port: %w", err)
			return
		}

		pgContainer = &PostgresContainer{
			container: container,
			host:      host,
			port:      mappedPort.Port(),
		}
	})

	if pgError != nil {
		t.Fatalf("Postgres container failed: %v", pgError)
	}

	return pgContainer
}

// DSN returns a URL connection string for database dbName.
func (c *PostgresContainer) DSN(dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pgUser, pgPassword, c.host, c.port, dbName)
}

// AdminDSN returns the connection string for the default database.
func (c *PostgresContainer) AdminDSN() string {
	return c.DSN(pgDatabase)
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *PostgresContainer) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}

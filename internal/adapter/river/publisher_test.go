package river_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	riveradapter "github.com/opsdeck/tenantctl/internal/adapter/river"
	"github.com/opsdeck/tenantctl/internal/adapter/sqlite"
	"github.com/opsdeck/tenantctl/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

func setupStack(t *testing.T) (*riveradapter.Client, *sqlite.AuditStore) {
	t.Helper()

	db := setupTestDB(t)
	store, err := sqlite.NewFromDB(db)
	if err != nil {
		t.Fatalf("audit store: %v", err)
	}

	client, err := riveradapter.Setup(context.Background(), db, store)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	return client, store
}

func startClient(t *testing.T, client *riveradapter.Client) {
	t.Helper()

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})
}

func TestPublisher_Publish_EnqueuesJob(t *testing.T) {
	client, _ := setupStack(t)
	ctx := context.Background()

	// Subscribe to job completions before starting so we don't miss events.
	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()

	startClient(t, client)

	pub := riveradapter.NewPublisher(client)
	err := pub.Publish(ctx, domain.AuditEvent{
		Action:     "tenant.created",
		Actor:      "root@platform.test",
		TenantID:   "t-1",
		TenantName: "Acme Corp",
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Wait for the worker to process the job.
	select {
	case event := <-subscribeChan:
		if event.Job.Kind != "audit.recorded" {
			t.Errorf("job kind = %q, want %q", event.Job.Kind, "audit.recorded")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

func TestPublisher_Publish_LandsInAuditLog(t *testing.T) {
	client, store := setupStack(t)
	ctx := context.Background()

	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()

	startClient(t, client)

	pub := riveradapter.NewPublisher(client)
	err := pub.Publish(ctx, domain.AuditEvent{
		Action:     "module.enabled",
		Actor:      "root@platform.test",
		TenantID:   "t-42",
		Detail:     "module=analytics",
		OccurredAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case event := <-subscribeChan:
		// Verify the job carried the right args by checking the encoded JSON.
		argsStr := string(event.Job.EncodedArgs)
		for _, want := range []string{`"action":"module.enabled"`, `"tenant_id":"t-42"`, `"detail":"module=analytics"`} {
			if !strings.Contains(argsStr, want) {
				t.Errorf("encoded args missing %s, got: %s", want, argsStr)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}

	events, err := store.ListByTenant(ctx, "t-42", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d audit events, want 1", len(events))
	}
	if events[0].Action != "module.enabled" || events[0].Detail != "module=analytics" {
		t.Errorf("event = %+v", events[0])
	}
}

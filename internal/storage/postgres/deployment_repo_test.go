package postgres

import (
	"strings"
	"testing"

	"github.com/leozw/launchpad/internal/core"
)

func TestBuildDeploymentUpdateEmpty(t *testing.T) {
	query, args, ok := buildDeploymentUpdate("d1", core.DeploymentUpdate{})
	if ok {
		t.Fatalf("expected ok=false for empty update, got query %q with %d args", query, len(args))
	}
}

func TestBuildDeploymentUpdateAllFields(t *testing.T) {
	status := core.DeploymentSuccess
	duration := 12
	url := "https://demo.paas.dev"
	logs := "done"
	upd := core.DeploymentUpdate{
		Status:   &status,
		Duration: &duration,
		URL:      &url,
		Logs:     &logs,
	}

	query, args, ok := buildDeploymentUpdate("d1", upd)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args (4 fields + id), got %d", len(args))
	}
	if args[len(args)-1] != "d1" {
		t.Fatalf("expected id as final arg, got %v", args[len(args)-1])
	}
	for _, col := range []string{"status", "duration", "url", "logs"} {
		if !strings.Contains(query, col+" = $") {
			t.Fatalf("expected %s in SET list, query: %s", col, query)
		}
	}
	if !strings.Contains(query, "WHERE id = $5") {
		t.Fatalf("unexpected WHERE clause: %s", query)
	}
}

func TestBuildDeploymentUpdateSingleField(t *testing.T) {
	status := core.DeploymentError
	query, args, ok := buildDeploymentUpdate("d1", core.DeploymentUpdate{Status: &status})
	if !ok {
		t.Fatal("expected ok=true")
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if strings.Contains(query, ", ") {
		t.Fatalf("expected single SET entry, query: %s", query)
	}
}

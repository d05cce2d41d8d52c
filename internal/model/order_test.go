package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshotTransitionsReplace(t *testing.T) {
	t.Parallel()

	startedAt := time.Now()

	started := StartedSnapshot("o-1", startedAt, "expedite")
	if started.Stage != StageStarted {
		t.Fatalf("expected stage %q, got %q", StageStarted, started.Stage)
	}
	if !started.StartedAt.Equal(startedAt) || started.Flag != "expedite" {
		t.Fatalf("started snapshot missing its fields: %+v", started)
	}

	charged := ChargedSnapshot("o-1", "a1b2c3")
	if charged.Stage != StageCharged {
		t.Fatalf("expected stage %q, got %q", StageCharged, charged.Stage)
	}
	if !charged.StartedAt.IsZero() || charged.Flag != "" {
		t.Fatalf("charged snapshot must not carry started fields: %+v", charged)
	}
	if charged.AuthCode != "a1b2c3" {
		t.Fatalf("expected auth code, got %q", charged.AuthCode)
	}

	completed := CompletedSnapshot("o-1", startedAt.Add(time.Second))
	if completed.Stage != StageCompleted {
		t.Fatalf("expected stage %q, got %q", StageCompleted, completed.Stage)
	}
	if completed.AuthCode != "" || !completed.StartedAt.IsZero() {
		t.Fatalf("completed snapshot must not carry prior fields: %+v", completed)
	}
	if completed.CompletedAt.IsZero() {
		t.Fatalf("completed snapshot missing completion time")
	}
}

func TestOrderRequestInlinesOverrides(t *testing.T) {
	t.Parallel()

	req := OrderRequest{
		OrderID: "o-1",
		Overrides: Overrides{
			Amount:   42,
			Template: "receipt",
			Flag:     "expedite",
		},
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	if raw["order_id"] != "o-1" {
		t.Fatalf("expected order_id, got %v", raw["order_id"])
	}
	if raw["amount"] != float64(42) {
		t.Fatalf("expected flat amount, got %v", raw["amount"])
	}
	if raw["template"] != "receipt" {
		t.Fatalf("expected flat template, got %v", raw["template"])
	}
	if _, ok := raw["overrides"]; ok {
		t.Fatalf("expected overrides to be inlined, found nested object")
	}
}

func TestOrderResponseOmitEmptyFields(t *testing.T) {
	t.Parallel()

	resp := OrderResponse{
		Status:  StatusQueued,
		OrderID: "o-2",
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	for _, key := range []string{"auth", "customer", "error", "notification_id"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("expected %s to be omitted", key)
		}
	}
}

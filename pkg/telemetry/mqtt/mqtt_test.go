package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/meshx-project/meshx/pkg/bus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BrokerURL == "" {
		t.Fatal("BrokerURL should have a default")
	}
	if cfg.ConnectTimeout <= 0 {
		t.Fatal("ConnectTimeout should have a positive default")
	}
}

func TestEventMarshalsKeyAndData(t *testing.T) {
	ev := event{Key: bus.EventKey(7), Data: map[string]int{"on_off": 1}}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["key"].(float64) != 7 {
		t.Fatalf("key = %v, want 7", decoded["key"])
	}
}

func TestStateChangeKeysCoversAllTenFamilies(t *testing.T) {
	if len(stateChangeKeys) != 10 {
		t.Fatalf("len(stateChangeKeys) = %d, want 10", len(stateChangeKeys))
	}
	seen := make(map[bus.EventKey]struct{})
	for _, k := range stateChangeKeys {
		if _, dup := seen[k]; dup {
			t.Fatalf("duplicate state-change key %d", k)
		}
		seen[k] = struct{}{}
	}
}

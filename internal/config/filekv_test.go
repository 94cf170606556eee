package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ytget/bili-audio/internal/model"
)

func TestFileKV_RoundTripThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	kv, err := OpenFileKV(path)
	if err != nil {
		t.Fatalf("OpenFileKV failed: %v", err)
	}
	if _, err := NewCreatorStore(kv).Add(model.Creator{Mid: "99", Name: "up"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// store.save flushes, so a fresh handle sees the record
	reopened, err := OpenFileKV(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	c, ok, err := NewCreatorStore(reopened).Get("99")
	if err != nil || !ok || c.Name != "up" {
		t.Fatalf("Expected persisted creator, got %+v %v %v", c, ok, err)
	}
}

func TestFileKV_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("nope"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := OpenFileKV(path); err == nil {
		t.Error("Expected parse error")
	}
}

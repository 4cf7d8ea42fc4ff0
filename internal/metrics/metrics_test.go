package metrics

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestServeStatsReportsCounters(t *testing.T) {
	stats := &Stats{}
	stats.AddChunk(10, 4)
	stats.AddChunk(20, 8)

	srv := NewServer("127.0.0.1:0", stats)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() { <-srv.Stop() }()

	resp, err := http.Get("http://" + srv.Addr() + "/stats")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer resp.Body.Close()

	var got Stats
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Stats{ChunksIn: 2, ChunksOut: 2, BytesIn: 30, BytesOut: 12}
	if got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
}

func TestServerStopCompletesWithinTimeout(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &Stats{})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-srv.Stop():
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not complete in time")
	}
}

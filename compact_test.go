package binhash

import (
	"bytes"
	"log/slog"
	"testing"
	"time"
)

func TestCompactorSweepCompactsAllShards(t *testing.T) {
	dir := t.TempDir()
	var shards []*shard
	for i := 0; i < 3; i++ {
		s, err := openShard(i, shardPath(dir, i), 16)
		if err != nil {
			t.Fatalf("openShard %d: %v", i, err)
		}
		defer s.close()
		shards = append(shards, s)
	}

	for _, s := range shards {
		if err := s.insert([]byte("k"), []byte("v1")); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := s.insert([]byte("k"), []byte("v2")); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	c := newCompactor(shards, time.Hour, slog.Default())
	c.sweep()

	for _, s := range shards {
		s.cache.remove("k")
		got, found, err := s.get([]byte("k"))
		if err != nil || !found {
			t.Fatalf("get after sweep: found=%v err=%v", found, err)
		}
		if !bytes.Equal(got, []byte("v2")) {
			t.Fatalf("get after sweep: value = %q, want %q", got, "v2")
		}
	}
}

func TestCompactorStopAndWait(t *testing.T) {
	c := newCompactor(nil, time.Millisecond, slog.Default())
	c.start()
	c.stopAndWait()
	// a second stopAndWait would panic closing the already-closed stop channel;
	// callers are expected to invoke it exactly once, mirroring Engine.Close.
}

func TestCompactorRunsOnInterval(t *testing.T) {
	dir := t.TempDir()
	s, err := openShard(0, shardPath(dir, 0), 16)
	if err != nil {
		t.Fatalf("openShard: %v", err)
	}
	defer s.close()

	if err := s.insert([]byte("k"), []byte("v1")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.insert([]byte("k"), []byte("v2")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	sizeBefore, err := s.file.Stat()
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	c := newCompactor([]*shard{s}, 10*time.Millisecond, slog.Default())
	c.start()
	defer c.stopAndWait()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		info, err := s.file.Stat()
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if info.Size() < sizeBefore.Size() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("compactor did not shrink shard file within deadline")
}

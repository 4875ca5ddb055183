package cache

import (
	"sync"
	"testing"

	"github.com/ppiankov/tavla/internal/model"
)

func TestRunCache_GetPut(t *testing.T) {
	c := NewRunCache()

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss on empty cache")
	}

	resp := &model.EngineResponse{Moves: []model.CandidateMove{{}}}
	c.Put("key1", resp)

	got, found := c.Get("key1")
	if !found {
		t.Fatal("Expected hit after Put")
	}
	if got != resp {
		t.Error("Expected the same response pointer back")
	}
	if c.Len() != 1 {
		t.Errorf("Expected Len 1, got %d", c.Len())
	}
}

func TestRunCache_IsolatedPerRun(t *testing.T) {
	// Two runs must never see each other's entries
	first := NewRunCache()
	first.Put("key", &model.EngineResponse{})

	second := NewRunCache()
	if _, found := second.Get("key"); found {
		t.Error("Fresh cache must not contain another run's entries")
	}
}

func TestRunCache_ConcurrentAccess(t *testing.T) {
	c := NewRunCache()
	resp := &model.EngineResponse{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Put("shared", resp)
			c.Get("shared")
		}()
	}
	wg.Wait()

	if _, found := c.Get("shared"); !found {
		t.Error("Expected entry after concurrent writes")
	}
	if c.Len() != 1 {
		t.Errorf("Expected single entry, got %d", c.Len())
	}
}

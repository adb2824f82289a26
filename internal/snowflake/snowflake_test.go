package snowflake

import (
	"sync"
	"testing"
)

func TestGenerate_Unique(t *testing.T) {
	node, err := NewNode(1)
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}

	seen := make(map[ID]struct{})
	for i := 0; i < 10000; i++ {
		id := node.Generate()
		if _, ok := seen[id]; ok {
			t.Fatalf("Duplicate ID generated: %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestGenerate_Monotonic(t *testing.T) {
	node, _ := NewNode(1)

	prev := node.Generate()
	for i := 0; i < 10000; i++ {
		id := node.Generate()
		if id <= prev {
			t.Fatalf("IDs not monotonic: %d after %d", id, prev)
		}
		prev = id
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	node, _ := NewNode(2)

	const workers = 8
	const perWorker = 2000

	var mu sync.Mutex
	seen := make(map[ID]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]ID, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, node.Generate())
			}
			mu.Lock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d unique IDs, got %d", workers*perWorker, len(seen))
	}
}

func TestNewNode_InvalidNodeID(t *testing.T) {
	// 非法节点 ID 回退到 1，不报错
	node, err := NewNode(-5)
	if err != nil {
		t.Fatalf("NewNode failed: %v", err)
	}
	if node.nodeID != 1 {
		t.Errorf("Expected fallback nodeID 1, got %d", node.nodeID)
	}

	node, _ = NewNode(maxNodeID + 1)
	if node.nodeID != 1 {
		t.Errorf("Expected fallback nodeID 1, got %d", node.nodeID)
	}
}

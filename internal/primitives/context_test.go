package primitives

import (
	"fmt"
	"sync"
	"testing"
)

func TestContextBasic(t *testing.T) {
	ctx := NewContext()
	if _, ok := ctx.Get("nonexistent"); ok {
		t.Error("Get nonexistent should return false")
	}
	ctx.Set("key", 42)
	v, ok := ctx.Get("key")
	if !ok {
		t.Error("Get after Set should return true")
	}
	if vi, okk := v.(int); !okk || vi != 42 {
		t.Errorf("Get value mismatch: got %v (%T)", v, v)
	}
	ctx.Delete("key")
	_, ok = ctx.Get("key")
	if ok {
		t.Error("Get after Delete should return false")
	}
}

func TestContextSeededAndTyped(t *testing.T) {
	ctx := NewContext(map[string]any{"walks": 2, "name": "chick"})
	if got, ok := Value[int](ctx, "walks"); !ok || got != 2 {
		t.Errorf("Value[int](walks) = %v, %v want 2, true", got, ok)
	}
	if _, ok := Value[float64](ctx, "walks"); ok {
		t.Error("Value[float64] on an int should report false")
	}
	if got := ValueOr(ctx, "missing", 7.5); got != 7.5 {
		t.Errorf("ValueOr default = %v want 7.5", got)
	}
	if _, ok := Value[int](nil, "walks"); ok {
		t.Error("Value on nil context should report false")
	}
}

func TestContextAppendCopies(t *testing.T) {
	ctx := NewContext()
	first := Append(ctx, "ids", "a")
	second := Append(ctx, "ids", "b")
	if len(first) != 1 || len(second) != 2 {
		t.Fatalf("Append lengths = %d, %d want 1, 2", len(first), len(second))
	}
	if first[0] != "a" || second[1] != "b" {
		t.Errorf("Append contents = %v, %v", first, second)
	}
}

func TestContextSnapshotRestore(t *testing.T) {
	ctx := NewContext(map[string]any{"a": 1, "b": 2})
	snap := ctx.Snapshot()
	snap["a"] = 100
	if v, _ := ctx.Get("a"); v != 1 {
		t.Errorf("Snapshot must be a copy, context changed to %v", v)
	}
	ctx.Restore(map[string]any{"c": 3})
	if _, ok := ctx.Get("a"); ok {
		t.Error("Restore should drop previous keys")
	}
	if v, _ := ctx.Get("c"); v != 3 {
		t.Errorf("Restore c = %v want 3", v)
	}
}

func TestContextConcurrentWritesAndReads(t *testing.T) {
	ctx := NewContext()
	const nWorkers = 50
	const nOpsPerWorker = 50
	var wg sync.WaitGroup
	for i := 0; i < nWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < nOpsPerWorker; j++ {
				key := fmt.Sprintf("w%d_j%d", workerID, j)
				ctx.Set(key, j)
				v, has := ctx.Get(key)
				if !has || v.(int) != j {
					t.Errorf("Concurrent Set/Get mismatch for key %s: got %v", key, v)
				}
				if j%10 == 0 {
					ctx.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()
}

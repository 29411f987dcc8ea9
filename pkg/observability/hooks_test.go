package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	l := NoopLineageHooks{}
	l.OnDanglingReference("A", "dam_id", "missing")
	l.OnSelfReference("A")
	l.OnCycle("A", "B")
	l.OnGenerationConflict("A", -1, -2)

	p := NoopPipelineHooks{}
	p.OnBuild("A", 10, time.Millisecond, nil)
	p.OnLayout(3, 7, time.Millisecond)
	p.OnAssemble(10, 12, time.Millisecond)
	p.OnSelection("")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "positions")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/sessions/{id}/scene")
	h.OnResponse(ctx, "GET", "/sessions/{id}/scene", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Lineage().(NoopLineageHooks); !ok {
		t.Error("Lineage() should return NoopLineageHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	custom := &testLineageHooks{}
	SetLineageHooks(custom)
	if Lineage() != custom {
		t.Error("SetLineageHooks should set custom hooks")
	}

	// nil is ignored
	SetLineageHooks(nil)
	if Lineage() != custom {
		t.Error("SetLineageHooks(nil) should keep existing hooks")
	}

	Reset()
	if _, ok := Lineage().(NoopLineageHooks); !ok {
		t.Error("Reset should restore noop hooks")
	}
}

type testLineageHooks struct {
	NoopLineageHooks
	dangling int
}

func (h *testLineageHooks) OnDanglingReference(string, string, string) { h.dangling++ }

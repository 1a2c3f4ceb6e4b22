package viewer

import (
	"slices"
	"sync"
	"testing"
)

func TestOperationQueueRun(t *testing.T) {
	var q OperationQueue[*[]string]
	var log []string

	q.Add(NewOperation("a", false, func(l *[]string) { *l = append(*l, "a") }))
	q.Add(NewOperation("b", true, func(l *[]string) { *l = append(*l, "b") }))
	q.Add(NewOperation("c", false, func(l *[]string) { *l = append(*l, "c") }))

	q.Run(&log)
	q.Run(&log)

	if want := []string{"a", "b", "c", "b"}; !slices.Equal(log, want) {
		t.Errorf("ran %v, want %v", log, want)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
}

func TestOperationQueueRemove(t *testing.T) {
	var q OperationQueue[int]
	ran := 0
	op := NewOperation("op", true, func(int) { ran++ })
	q.Add(op)
	q.Add(op)
	q.Remove(op)

	q.Run(0)
	if ran != 0 || q.Len() != 0 {
		t.Errorf("ran = %d, Len() = %d after removal", ran, q.Len())
	}
}

func TestOperationQueueReentrantAdd(t *testing.T) {
	var q OperationQueue[int]
	ran := 0
	q.Add(NewOperation("outer", false, func(int) {
		q.Add(NewOperation("inner", false, func(int) { ran++ }))
	}))

	q.Run(0)
	if ran != 0 || q.Len() != 1 {
		t.Fatalf("ran = %d, Len() = %d; inner must wait for the next run", ran, q.Len())
	}
	q.Run(0)
	if ran != 1 {
		t.Errorf("inner ran %d times, want 1", ran)
	}
}

func TestOperationQueueConcurrentAdd(t *testing.T) {
	var q OperationQueue[int]
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Add(NewOperation("op", false, func(int) {}))
			}
		}()
	}
	wg.Wait()

	if q.Len() != 800 {
		t.Errorf("Len() = %d, want 800", q.Len())
	}
}

func TestOperationFuncNil(t *testing.T) {
	op := &OperationFunc[int]{Name: "empty"}
	op.Run(1)
	if op.Keep() {
		t.Error("Keep() = true for zero operation")
	}
}

func TestWindowUpdateOperations(t *testing.T) {
	w, _, _, _ := newTestWindow(640, 480)
	var got []*Window
	op := NewOperation("collect", true, func(w *Window) { got = append(got, w) })
	w.AddUpdateOperation(op)

	w.UpdateTraversal()
	w.RemoveUpdateOperation(op)
	w.UpdateTraversal()

	if len(got) != 1 || got[0] != w {
		t.Errorf("operation saw %v, want the window once", got)
	}
}

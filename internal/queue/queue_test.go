package queue

import (
	"sync"
	"testing"
)

type cellRef struct {
	Col, Row int
}

func TestQueue_PushDrain(t *testing.T) {
	q := New[cellRef]()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}

	q.Push(cellRef{1, 1})
	q.Push(cellRef{2, 2}, cellRef{3, 3})
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}

	items := q.Drain()
	if len(items) != 3 || items[0].Col != 1 || items[2].Col != 3 {
		t.Errorf("unexpected drain order: %+v", items)
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue after drain, got %d", q.Len())
	}
	if q.Drain() != nil {
		t.Error("expected nil drain from empty queue")
	}
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(n*100 + j)
			}
		}(i)
	}
	wg.Wait()

	if q.Len() != 1000 {
		t.Errorf("expected 1000 items, got %d", q.Len())
	}
}

func TestPriorityQueue_PopsInPriorityOrder(t *testing.T) {
	pq := NewPriority[cellRef](4)
	if !pq.Empty() {
		t.Fatal("expected empty priority queue")
	}

	pq.Push(cellRef{0, 0}, 3.5)
	pq.Push(cellRef{1, 0}, 0.25)
	pq.Push(cellRef{2, 0}, 1.0)
	pq.Push(cellRef{3, 0}, 0.25)

	wantCols := []int{1, 3, 2, 0}
	wantPrio := []float64{0.25, 0.25, 1.0, 3.5}
	for i := range wantCols {
		v, p, ok := pq.Pop()
		if !ok {
			t.Fatalf("pop %d: queue unexpectedly empty", i)
		}
		if v.Col != wantCols[i] || p != wantPrio[i] {
			t.Errorf("pop %d: got col=%d prio=%v, want col=%d prio=%v", i, v.Col, p, wantCols[i], wantPrio[i])
		}
	}

	if _, _, ok := pq.Pop(); ok {
		t.Error("expected pop from empty queue to report !ok")
	}
}

func TestPriorityQueue_InterleavedPushPop(t *testing.T) {
	pq := NewPriority[int](0)
	pq.Push(10, 10)
	pq.Push(5, 5)
	if v, _, _ := pq.Pop(); v != 5 {
		t.Errorf("expected 5, got %d", v)
	}
	pq.Push(1, 1)
	pq.Push(7, 7)
	got := []int{}
	for !pq.Empty() {
		v, _, _ := pq.Pop()
		got = append(got, v)
	}
	want := []int{1, 7, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

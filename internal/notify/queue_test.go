package notify_test

import (
	"errors"
	"sync"
	"testing"

	"talentd/internal/notify"
)

func TestQueueFIFO(t *testing.T) {
	queue := notify.NewQueue(8)

	first := notify.NewJob("a@example.com", "first", "")
	second := notify.NewJob("b@example.com", "second", "")
	third := notify.NewJob("c@example.com", "third", "")
	for _, job := range []*notify.Job{first, second, third} {
		if err := queue.Enqueue(job); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	for _, want := range []*notify.Job{first, second, third} {
		got, ok := queue.Dequeue()
		if !ok {
			t.Fatal("expected a job")
		}
		if got.ID != want.ID {
			t.Fatalf("expected job %q, got %q", want.Subject, got.Subject)
		}
	}
	if _, ok := queue.Dequeue(); ok {
		t.Fatal("expected empty queue")
	}
}

func TestQueueCapacityBound(t *testing.T) {
	queue := notify.NewQueue(2)

	if err := queue.Enqueue(notify.NewJob("a@example.com", "1", "")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := queue.Enqueue(notify.NewJob("a@example.com", "2", "")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	err := queue.Enqueue(notify.NewJob("a@example.com", "3", ""))
	if !errors.Is(err, notify.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if got := queue.Len(); got != 2 {
		t.Fatalf("expected Len 2, got %d", got)
	}

	// Draining frees capacity again.
	if _, ok := queue.Dequeue(); !ok {
		t.Fatal("expected a job")
	}
	if err := queue.Enqueue(notify.NewJob("a@example.com", "4", "")); err != nil {
		t.Fatalf("Enqueue after drain failed: %v", err)
	}
}

func TestQueueWakeSignal(t *testing.T) {
	queue := notify.NewQueue(8)

	select {
	case <-queue.Wake():
		t.Fatal("unexpected wake before enqueue")
	default:
	}

	if err := queue.Enqueue(notify.NewJob("a@example.com", "1", "")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	// Signals coalesce: a second enqueue must not block on the full channel.
	if err := queue.Enqueue(notify.NewJob("a@example.com", "2", "")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case <-queue.Wake():
	default:
		t.Fatal("expected a wake signal after enqueue")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	queue := notify.NewQueue(1000)

	var wg sync.WaitGroup
	const producers = 10
	const perProducer = 50
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := queue.Enqueue(notify.NewJob("a@example.com", "s", "")); err != nil {
					t.Errorf("Enqueue failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := queue.Len(); got != producers*perProducer {
		t.Fatalf("expected %d jobs, got %d", producers*perProducer, got)
	}
	seen := make(map[string]struct{})
	for {
		job, ok := queue.Dequeue()
		if !ok {
			break
		}
		if _, dup := seen[job.ID]; dup {
			t.Fatalf("job %s dequeued twice", job.ID)
		}
		seen[job.ID] = struct{}{}
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("expected %d unique jobs, got %d", producers*perProducer, len(seen))
	}
}

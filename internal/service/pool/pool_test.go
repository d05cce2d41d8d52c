package pool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var slotTests = []struct {
	in   int
	want int
}{
	{in: -10, want: 1},
	{in: 0, want: 1},
	{in: 1, want: 1},
	{in: 4, want: 4},
	{in: 128, want: 128},
	{in: 500, want: 128},
}

func TestNewClampsSlotCount(t *testing.T) {
	t.Parallel()

	for _, tt := range slotTests {
		tt := tt
		t.Run(fmt.Sprintf("size=%d", tt.in), func(t *testing.T) {
			t.Parallel()

			p := New(tt.in)
			if got := cap(p.sem); got != tt.want {
				t.Fatalf("New(%d) slots = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestAcquireBlocksWhenSlotsFull(t *testing.T) {
	t.Parallel()

	p := New(2)
	ctx := context.Background()

	// Occupy every slot, as if two jobs were mid-replay.
	for i := 0; i < 2; i++ {
		if err := p.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() #%d error = %v", i+1, err)
		}
	}

	third := make(chan error, 1)
	go func() {
		third <- p.Acquire(ctx)
	}()

	select {
	case err := <-third:
		t.Fatalf("Acquire() on a full pool returned early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	p.Release()
	select {
	case err := <-third:
		if err != nil {
			t.Fatalf("Acquire() after release error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() still blocked after a slot was released")
	}

	p.Release()
	p.Release()
}

func TestAcquireHonorsCancellation(t *testing.T) {
	t.Parallel()

	t.Run("expired deadline", func(t *testing.T) {
		t.Parallel()

		p := New(1)
		if err := p.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		defer p.Release()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("Acquire() error = %v, want context.DeadlineExceeded", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		p := New(1)
		if err := p.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
		defer p.Release()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := p.Acquire(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("Acquire() error = %v, want context.Canceled", err)
		}
	})
}

// FuzzAcquireRelease checks that whatever size is requested, the clamped
// pool always has at least one usable slot.
func FuzzAcquireRelease(f *testing.F) {
	f.Add(1)
	f.Add(137)
	f.Fuzz(func(t *testing.T, size int) {
		p := New(size)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		if err := p.Acquire(ctx); err != nil {
			t.Fatalf("Acquire() on a fresh pool error = %v (size %d)", err, size)
		}
		p.Release()
	})
}

func BenchmarkAcquireRelease(b *testing.B) {
	for _, slots := range []int{1, 8, 64} {
		b.Run(fmt.Sprintf("slots=%d", slots), func(b *testing.B) {
			p := New(slots)
			ctx := context.Background()
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					if err := p.Acquire(ctx); err != nil {
						b.Fatal(err)
					}
					p.Release()
				}
			})
		})
	}
}

package shared

import "testing"

func TestBroadcaster(t *testing.T) {
	t.Run("delivers to every subscriber", func(t *testing.T) {
		b := NewBroadcaster[int]()
		a, cancelA := b.Subscribe(1)
		c, cancelC := b.Subscribe(1)
		defer cancelA()
		defer cancelC()

		b.Publish(7)

		if got := <-a; got != 7 {
			t.Errorf("subscriber a got %d", got)
		}
		if got := <-c; got != 7 {
			t.Errorf("subscriber c got %d", got)
		}
	})

	t.Run("keeps newest value when full", func(t *testing.T) {
		b := NewBroadcaster[int]()
		ch, cancel := b.Subscribe(2)
		defer cancel()

		for i := 1; i <= 5; i++ {
			b.Publish(i)
		}

		first, second := <-ch, <-ch
		if second != 5 {
			t.Errorf("expected newest value 5 last, got %d then %d", first, second)
		}
	})

	t.Run("SubscribeWith seeds only the new subscriber", func(t *testing.T) {
		b := NewBroadcaster[int]()
		old, cancelOld := b.Subscribe(1)
		defer cancelOld()

		seeded, cancel := b.SubscribeWith(3, 1)
		defer cancel()

		if got := <-seeded; got != 3 {
			t.Errorf("expected initial 3, got %d", got)
		}
		select {
		case v := <-old:
			t.Errorf("existing subscriber should not see initial value, got %d", v)
		default:
		}
	})

	t.Run("cancel closes channel", func(t *testing.T) {
		b := NewBroadcaster[string]()
		ch, cancel := b.Subscribe(0)
		cancel()
		cancel()

		if _, ok := <-ch; ok {
			t.Error("expected closed channel")
		}
		if b.Len() != 0 {
			t.Errorf("expected no subscribers, got %d", b.Len())
		}
		b.Publish("ignored")
	})

	t.Run("close", func(t *testing.T) {
		b := NewBroadcaster[string]()
		ch, cancel := b.Subscribe(1)
		b.Close()
		cancel()

		if _, ok := <-ch; ok {
			t.Error("expected closed channel after Close")
		}

		late, _ := b.Subscribe(1)
		if _, ok := <-late; ok {
			t.Error("subscribing after Close should return a closed channel")
		}
		b.Publish("ignored")
	})
}

package bus

import (
	"strconv"
	"testing"
	"time"
)

func benchEvt(typ string) Event {
	return NewEvent(typ, "bench", nil)
}

// counting handler so the delivery loop cannot be optimized away
func makeHandler(c *int64) EventHandler {
	return func(Event) error {
		*c++
		return nil
	}
}

type nopObserver struct{}

func (nopObserver) OnPublish(string, Event)                       {}
func (nopObserver) OnDelivered(string, int, error, time.Duration) {}

func BenchmarkPublishSingleSubscriber(b *testing.B) {
	bus := New()
	var c int64
	_, _ = bus.Subscribe("sharedgroup.property.propagated", makeHandler(&c))
	e := benchEvt("sharedgroup.property.propagated")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Publish(e)
	}
	b.StopTimer()
	_ = c
}

func BenchmarkPublishManySubscribers(b *testing.B) {
	for _, subs := range []int{1, 4, 16, 64, 256} {
		b.Run("subs="+strconv.Itoa(subs), func(b *testing.B) {
			bus := New()
			var c int64
			for i := 0; i < subs; i++ {
				_, _ = bus.Subscribe("tick", makeHandler(&c))
			}
			e := benchEvt("tick")
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = bus.Publish(e)
			}
			b.StopTimer()
			_ = c
		})
	}
}

func BenchmarkPublishWithFilters(b *testing.B) {
	bus := New()
	var c int64
	_, _ = bus.Subscribe("tick", makeHandler(&c))
	e := benchEvt("tick")
	pass := func(Event) bool { return true }
	drop := func(Event) bool { return false }
	b.Run("pass", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = bus.PublishWithFilters(e, pass, pass, pass)
		}
	})
	b.Run("drop-early", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = bus.PublishWithFilters(e, drop)
		}
	})
	b.Run("drop-late", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = bus.PublishWithFilters(e, pass, pass, drop)
		}
	})
	_ = c
}

func BenchmarkObserverOverhead(b *testing.B) {
	bus := New()
	var c int64
	for i := 0; i < 32; i++ {
		_, _ = bus.Subscribe("tick", makeHandler(&c))
	}
	e := benchEvt("tick")
	b.Run("no-observer", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = bus.Publish(e)
		}
	})
	b.Run("with-observer", func(b *testing.B) {
		obs := &nopObserver{}
		bus.AddObserver(obs)
		defer bus.RemoveObserver(obs)
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = bus.Publish(e)
		}
	})
	_ = c
}

func BenchmarkPublishBatch(b *testing.B) {
	bus := New()
	var c int64
	for i := 0; i < 16; i++ {
		_, _ = bus.Subscribe("tick", makeHandler(&c))
	}
	events := make([]Event, 64)
	for i := range events {
		events[i] = benchEvt("tick")
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.PublishBatch(events...)
	}
	_ = c
}

func BenchmarkSubscribeUnsubscribe(b *testing.B) {
	bus := New()
	var c int64
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s, _ := bus.Subscribe("tick", makeHandler(&c))
		_ = bus.Unsubscribe(s)
	}
}

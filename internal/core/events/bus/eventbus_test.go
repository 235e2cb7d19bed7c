package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("group.created", func(e Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("group.created", "tester", 123)))
	require.NotNil(t, got)
	assert.Equal(t, 123, got.Data())
	assert.NotEmpty(t, got.ID())
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		_, err := b.Subscribe("ev", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	_, err := b.SubscribeAll(func(Event) error {
		order = append(order, 99)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("ev", "src", nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 99}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("ev", func(Event) error { count++; return nil })
	require.NoError(t, err)

	_ = b.Publish(NewEvent("ev", "src", nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	_ = b.Publish(NewEvent("ev", "src", nil))

	assert.Equal(t, 1, count)
	assert.False(t, sub.IsActive())
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	first, second := errors.New("first"), errors.New("second")
	_, _ = b.Subscribe("ev", func(Event) error { return first })
	_, _ = b.Subscribe("ev", func(Event) error { return second })

	err := b.Publish(NewEvent("ev", "src", nil))
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)

	err = b.PublishBatch(NewEvent("ev", "src", nil), NewEvent("other", "src", nil))
	assert.ErrorIs(t, err, first)
}

func TestFiltersAndMetrics(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	delivered := 0
	_, _ = b.Subscribe("ev", func(Event) error { delivered++; return nil })

	reject := func(Event) bool { return false }
	require.NoError(t, b.PublishWithFilters(NewEvent("ev", "src", nil), reject))
	require.NoError(t, b.Publish(NewEvent("ev", "src", nil)))

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DroppedByFilters)
	assert.Equal(t, uint64(1), m.SubscribersActive)

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("ev", "src", nil))
	assert.Equal(t, 1, obs.publishCount)
}

func TestSubscribeValidation(t *testing.T) {
	b := New()
	_, err := b.Subscribe("", func(Event) error { return nil })
	assert.Error(t, err)
	_, err = b.Subscribe("ev", nil)
	assert.Error(t, err)
}

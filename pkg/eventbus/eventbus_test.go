package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type savedEvent struct {
	OwnerID int64
	Count   int
}

func newTestBus() EventBus {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewEventPublisher(log)
}

func TestPublishDispatchesToMatchingSubscriber(t *testing.T) {
	bus := newTestBus()

	var got savedEvent
	bus.Subscribe(func(e savedEvent) {
		got = e
	})

	bus.Publish(savedEvent{OwnerID: 7, Count: 3})
	require.Equal(t, int64(7), got.OwnerID)
	require.Equal(t, 3, got.Count)
}

func TestPublishSkipsNonMatchingSubscriber(t *testing.T) {
	bus := newTestBus()

	called := false
	bus.Subscribe(func(s string) {
		called = true
	})

	bus.Publish(savedEvent{OwnerID: 1})
	require.False(t, called)
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	bus := newTestBus()

	var calls int
	bus.Subscribe(func(e savedEvent) {
		panic("boom")
	})
	bus.Subscribe(func(e savedEvent) {
		calls++
	})

	require.NotPanics(t, func() {
		bus.Publish(savedEvent{OwnerID: 1})
	})
	require.Equal(t, 1, calls)
}

func TestUnsubscribeRemovesHandler(t *testing.T) {
	bus := newTestBus()

	calls := 0
	handler := func(e savedEvent) { calls++ }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Publish(savedEvent{})
	bus.Unsubscribe(handler)
	require.Equal(t, 0, bus.SubscribersCount())

	bus.Publish(savedEvent{})
	require.Equal(t, 1, calls)
}

func TestMatchSignatureInterfaceParam(t *testing.T) {
	handler := func(err error) {}
	require.True(t, MatchSignature(handler, []interface{}{assertedErr{}}))
	require.False(t, MatchSignature(handler, []interface{}{"not an error"}))
}

type assertedErr struct{}

func (assertedErr) Error() string { return "asserted" }

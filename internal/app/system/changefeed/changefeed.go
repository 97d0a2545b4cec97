// Package changefeed carries change notifications from the stores to live
// subscribers. It is a thin layer over a watermill in-process pub/sub: the
// stores publish after every successful write and livequery subscriptions
// re-query whenever a notification arrives on their topic.
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// Kind describes what happened to a document.
type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
	Deleted Kind = "deleted"
)

// Change is the payload of a notification.
type Change struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// ErrClosed is returned by Listen after Close.
var ErrClosed = errors.New("changefeed closed")

// Feed publishes and delivers change notifications by topic.
type Feed struct {
	pub    message.Publisher
	sub    message.Subscriber
	closer func() error
	log    *zap.Logger
}

// outputBuffer bounds how many undelivered notifications a listener may hold.
const outputBuffer = 64

// NewInProcess returns a Feed backed by watermill's go-channel pub/sub.
func NewInProcess(logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	gc := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            outputBuffer,
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: false,
	}, NewLoggerAdapter(logger))

	return &Feed{pub: gc, sub: gc, closer: gc.Close, log: logger}
}

// Notify publishes c on topic. Failures are logged, never returned: a write
// that succeeded must not be reported as failed because a listener missed it.
func (f *Feed) Notify(topic string, c Change) {
	if f == nil {
		return
	}
	payload, err := json.Marshal(c)
	if err != nil {
		f.log.Error("changefeed: encode change", zap.String("topic", topic), zap.Error(err))
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := f.pub.Publish(topic, msg); err != nil {
		f.log.Warn("changefeed: publish failed", zap.String("topic", topic), zap.Error(err))
	}
}

// Listen subscribes to topic. The returned channel is closed when ctx is done
// or the feed is closed. Messages are acknowledged on receipt.
func (f *Feed) Listen(ctx context.Context, topic string) (<-chan Change, error) {
	if f == nil {
		return nil, ErrClosed
	}
	msgs, err := f.sub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan Change, 1)
	go func() {
		defer close(out)
		for msg := range msgs {
			msg.Ack()

			var c Change
			if err := json.Unmarshal(msg.Payload, &c); err != nil {
				f.log.Warn("changefeed: decode change", zap.String("topic", topic), zap.Error(err))
				continue
			}

			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ListenAll merges the notifications of several topics into one channel,
// closed once every topic listener has ended.
func (f *Feed) ListenAll(ctx context.Context, topics ...string) (<-chan Change, error) {
	ctx, cancel := context.WithCancel(ctx)
	ins := make([]<-chan Change, 0, len(topics))
	for _, t := range topics {
		in, err := f.Listen(ctx, t)
		if err != nil {
			cancel()
			return nil, err
		}
		ins = append(ins, in)
	}

	out := make(chan Change, 1)
	var wg sync.WaitGroup
	for _, in := range ins {
		wg.Add(1)
		go func(in <-chan Change) {
			defer wg.Done()
			for c := range in {
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}(in)
	}
	go func() {
		wg.Wait()
		cancel()
		close(out)
	}()
	return out, nil
}

// Close shuts the feed down, closing every open listener.
func (f *Feed) Close() error {
	if f == nil || f.closer == nil {
		return nil
	}
	return f.closer()
}

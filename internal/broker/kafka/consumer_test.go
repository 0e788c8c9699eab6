package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/BearBump/ShipTrack/internal/broker/messages"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs      []kafka.Message
	err       error
	i         int
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.i < len(r.msgs) {
		m := r.msgs[r.i]
		r.i++
		return m, nil
	}
	if r.err != nil {
		return kafka.Message{}, r.err
	}
	return kafka.Message{}, errors.New("eof")
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

type poisonCount map[string]int

func (p poisonCount) IncPoisonMessage(topic string) { p[topic]++ }

func TestConsumer_Consume_CallsHandlerAndCommits(t *testing.T) {
	fr := &fakeReader{
		msgs: []kafka.Message{{Key: []byte("k"), Value: []byte("v")}},
		err:  errors.New("stop"),
	}
	c := newConsumerWithReader(fr, "notifications", nil)

	var gotK, gotV []byte
	err := c.Consume(context.Background(), func(k, v []byte) error {
		gotK, gotV = k, v
		return nil
	})
	require.Error(t, err)
	require.Equal(t, []byte("k"), gotK)
	require.Equal(t, []byte("v"), gotV)
	require.Len(t, fr.committed, 1)
}

func TestConsumer_Consume_HandlerErrorStopsWithoutCommit(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{{Key: []byte("k"), Value: []byte("v")}}}
	poison := poisonCount{}
	c := newConsumerWithReader(fr, "notifications", poison)

	want := errors.New("handler failed")
	err := c.Consume(context.Background(), func(k, v []byte) error { return want })
	require.ErrorIs(t, err, want)
	require.Empty(t, fr.committed)
	require.Empty(t, poison)
}

func TestConsumer_Consume_MalformedIsCommittedAndCounted(t *testing.T) {
	fr := &fakeReader{
		msgs: []kafka.Message{
			{Value: []byte("garbage"), Offset: 7},
			{Value: []byte(`{"channel":"email"}`), Offset: 8},
		},
		err: errors.New("stop"),
	}
	poison := poisonCount{}
	c := newConsumerWithReader(fr, "notifications", poison)

	var handled int
	err := c.Consume(context.Background(), func(k, v []byte) error {
		handled++
		if string(v) == "garbage" {
			return fmt.Errorf("decode: %w", messages.ErrMalformed)
		}
		return nil
	})
	require.EqualError(t, err, "fetch message: stop")
	require.Equal(t, 2, handled)
	require.Len(t, fr.committed, 2)
	require.Equal(t, int64(7), fr.committed[0].Offset)
	require.Equal(t, 1, poison["notifications"])
}

func TestNewConsumer_Close(t *testing.T) {
	c := NewConsumer(ConsumerConfig{
		Brokers:     []string{"localhost:0"},
		Topic:       "t",
		GroupID:     "g",
		StartOffset: StartOffsetFirst,
	})
	require.NotNil(t, c)
	require.NoError(t, c.Close())
}

func TestStartOffset(t *testing.T) {
	require.Equal(t, kafka.FirstOffset, startOffset("First"))
	require.Equal(t, kafka.LastOffset, startOffset("last"))
	require.Equal(t, kafka.LastOffset, startOffset(""))
}

package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/store"
)

const (
	// StreamName is the name of the thread-messages stream.
	StreamName = "TRIP_THREADS"

	// SubjectPrefix is the prefix for all thread subjects.
	SubjectPrefix = "trip"

	// ThreadBucket is the KV bucket holding thread metadata.
	ThreadBucket = "THREADS"
)

// ThreadStore is the JetStream-backed store.ThreadStore implementation.
// Messages live in an append-only stream, thread metadata in a KV bucket.
type ThreadStore struct {
	client *Client
	kv     jetstream.KeyValue
}

// NewThreadStore ensures the message stream and metadata bucket exist and
// returns the store.
func NewThreadStore(ctx context.Context, client *Client) (*ThreadStore, error) {
	js := client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err != nil {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        StreamName,
			Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      365 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Compression: jetstream.S2Compression,
			Description: "Conversation thread messages",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      ThreadBucket,
		Description: "Thread metadata",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create thread bucket: %w", err)
	}

	return &ThreadStore{client: client, kv: kv}, nil
}

func threadKey(userID, threadID string) string {
	return userID + "." + threadID
}

// MessageSubject returns the subject for a message.
func MessageSubject(userID, threadID string, role model.Role) string {
	return fmt.Sprintf("%s.%s.%s.msg.%s", SubjectPrefix, userID, threadID, role)
}

// ThreadFilter returns the filter subject covering all of a thread's messages.
func ThreadFilter(userID, threadID string) string {
	return fmt.Sprintf("%s.%s.%s.>", SubjectPrefix, userID, threadID)
}

// CreateThread stores thread metadata in the KV bucket.
func (s *ThreadStore) CreateThread(ctx context.Context, thread *model.Thread) error {
	data, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("failed to marshal thread: %w", err)
	}
	if _, err := s.kv.Put(ctx, threadKey(thread.UserID, thread.ID), data); err != nil {
		return fmt.Errorf("failed to store thread: %w", err)
	}
	return nil
}

// GetThread returns thread metadata if the thread exists and is owned by
// userID.
func (s *ThreadStore) GetThread(ctx context.Context, userID, threadID string) (*model.Thread, error) {
	entry, err := s.kv.Get(ctx, threadKey(userID, threadID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, store.ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}

	var thread model.Thread
	if err := json.Unmarshal(entry.Value(), &thread); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thread: %w", err)
	}
	return &thread, nil
}

// ListThreads returns the user's threads, newest first.
func (s *ThreadStore) ListThreads(ctx context.Context, userID string, limit, offset int) ([]model.Thread, int, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list thread keys: %w", err)
	}

	var threads []model.Thread
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, userID+".") {
			continue
		}
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var thread model.Thread
		if err := json.Unmarshal(entry.Value(), &thread); err != nil {
			continue
		}
		threads = append(threads, thread)
	}

	// Newest first
	for i := 0; i < len(threads); i++ {
		for j := i + 1; j < len(threads); j++ {
			if threads[j].CreatedAt.After(threads[i].CreatedAt) {
				threads[i], threads[j] = threads[j], threads[i]
			}
		}
	}

	total := len(threads)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return threads[start:end], total, nil
}

// DeleteThread hard-deletes the thread: metadata key plus every message on
// the thread's subjects.
func (s *ThreadStore) DeleteThread(ctx context.Context, userID, threadID string) error {
	if _, err := s.GetThread(ctx, userID, threadID); err != nil {
		return err
	}

	if err := s.kv.Delete(ctx, threadKey(userID, threadID)); err != nil {
		return fmt.Errorf("failed to delete thread metadata: %w", err)
	}

	stream, err := s.client.JetStream().Stream(ctx, StreamName)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	if err := stream.Purge(ctx, jetstream.WithPurgeSubject(ThreadFilter(userID, threadID))); err != nil {
		return fmt.Errorf("failed to purge thread messages: %w", err)
	}
	return nil
}

// AppendMessage publishes the message to the thread's subject and returns
// the assigned stream sequence.
func (s *ThreadStore) AppendMessage(ctx context.Context, msg *model.Message) (uint64, error) {
	thread, err := s.GetThread(ctx, msg.UserID, msg.ThreadID)
	if err != nil {
		return 0, err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal message: %w", err)
	}

	ack, err := s.client.JetStream().Publish(ctx, MessageSubject(msg.UserID, msg.ThreadID, msg.Role), data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish message: %w", err)
	}

	// The message is durable at this point. The metadata refresh is
	// best-effort, but a failure should not pass silently: MessageCount
	// and UpdatedAt drift until the next successful append.
	thread.MessageCount++
	thread.UpdatedAt = msg.CreatedAt
	if meta, err := json.Marshal(thread); err != nil {
		s.client.logger.Warn("failed to marshal thread metadata", "thread_id", thread.ID, "error", err)
	} else if _, err := s.kv.Put(ctx, threadKey(thread.UserID, thread.ID), meta); err != nil {
		s.client.logger.Warn("failed to refresh thread metadata", "thread_id", thread.ID, "error", err)
	}

	return ack.Sequence, nil
}

// GetMessages reads the thread's messages after the given stream sequence,
// in append order.
func (s *ThreadStore) GetMessages(ctx context.Context, userID, threadID string, afterSequence uint64, limit int) ([]model.Message, error) {
	if _, err := s.GetThread(ctx, userID, threadID); err != nil {
		return nil, err
	}

	consumerConfig := jetstream.ConsumerConfig{
		FilterSubject: fmt.Sprintf("%s.%s.%s.msg.>", SubjectPrefix, userID, threadID),
		AckPolicy:     jetstream.AckNonePolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	}
	if afterSequence > 0 {
		consumerConfig.DeliverPolicy = jetstream.DeliverByStartSequencePolicy
		consumerConfig.OptStartSeq = afterSequence + 1
	}

	consumer, err := s.client.JetStream().CreateConsumer(ctx, StreamName, consumerConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}

	batch, err := consumer.Fetch(limit, jetstream.FetchMaxWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []model.Message
	for raw := range batch.Messages() {
		var message model.Message
		if err := json.Unmarshal(raw.Data(), &message); err != nil {
			continue
		}
		if meta, err := raw.Metadata(); err == nil {
			message.Sequence = meta.Sequence.Stream
		}
		messages = append(messages, message)
	}

	if batch.Error() != nil && !errors.Is(batch.Error(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("batch error: %w", batch.Error())
	}

	return messages, nil
}

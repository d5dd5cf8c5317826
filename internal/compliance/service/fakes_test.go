package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"compliflow/internal/common/mq"
	"compliflow/internal/common/storage"
)

type fakeStorage struct {
	objects map[string][]byte
	failPut bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.ObjectInfo, error) {
	if s.failPut {
		return nil, fmt.Errorf("storage unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	s.objects[key] = data
	return &storage.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: contentType}, nil
}

func (s *fakeStorage) GetObject(ctx context.Context, key string) (io.ReadCloser, *storage.ObjectInfo, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), &storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (s *fakeStorage) StatObject(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return &storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (s *fakeStorage) PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return "https://storage.test/" + key, nil
}

func (s *fakeStorage) RemoveObject(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) Ping(ctx context.Context) error { return nil }

type fakeQueue struct {
	published []*mq.Message
	topics    []string
}

func (q *fakeQueue) Publish(ctx context.Context, topic string, message *mq.Message) error {
	q.published = append(q.published, message)
	q.topics = append(q.topics, topic)
	return nil
}

func (q *fakeQueue) Subscribe(ctx context.Context, topic string, handler mq.HandlerFunc, opts *mq.SubscribeOptions) error {
	return nil
}

func (q *fakeQueue) Start() error                   { return nil }
func (q *fakeQueue) Stop() error                    { return nil }
func (q *fakeQueue) Ping(ctx context.Context) error { return nil }
func (q *fakeQueue) Close() error                   { return nil }

type fakeCache struct {
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.values[key] = fmt.Sprint(value)
	return nil
}

func (c *fakeCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = fmt.Sprint(value)
	return true, nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, keys ...string) (int64, error) {
	var count int64
	for _, key := range keys {
		if _, ok := c.values[key]; ok {
			count++
		}
	}
	return count, nil
}

func (c *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	current, _ := strconv.ParseInt(c.values[key], 10, 64)
	current++
	c.values[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (c *fakeCache) Ping(ctx context.Context) error { return nil }
func (c *fakeCache) Close() error                   { return nil }

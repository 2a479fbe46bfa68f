package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"yew-art/server/logging"
)

// JSON appends one encoded event per line. With a flush interval the output
// is buffered and flushed in the background; otherwise every write flushes.
type JSON struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	encoder  *json.Encoder
	closer   io.Closer
	buffered bool

	stop chan struct{}
	done chan struct{}
}

// NewJSON writes events to w. The caller keeps ownership of w.
func NewJSON(w io.Writer, flushInterval time.Duration) *JSON {
	if w == nil {
		w = io.Discard
	}
	buf := bufio.NewWriter(w)
	sink := &JSON{writer: buf, encoder: json.NewEncoder(buf), buffered: flushInterval > 0}
	if sink.buffered {
		sink.stop = make(chan struct{})
		sink.done = make(chan struct{})
		go sink.flushEvery(flushInterval)
	}
	return sink
}

// OpenJSONFile appends events to the file at cfg.FilePath, creating it when
// missing. Close flushes and closes the file.
func OpenJSONFile(cfg logging.JSONConfig) (*JSON, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("json sink: empty file path")
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("json sink: %w", err)
	}
	sink := NewJSON(file, cfg.FlushInterval)
	sink.closer = file
	return sink, nil
}

// Write satisfies logging.Sink.
func (s *JSON) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(event); err != nil {
		return err
	}
	if !s.buffered {
		return s.writer.Flush()
	}
	return nil
}

// Close stops background flushing, flushes what is buffered and closes the
// file it opened, if any.
func (s *JSON) Close(context.Context) error {
	if s.stop != nil {
		close(s.stop)
		<-s.done
		s.stop = nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.writer.Flush()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
		s.closer = nil
	}
	return err
}

func (s *JSON) flushEvery(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.writer.Flush()
			s.mu.Unlock()
		}
	}
}

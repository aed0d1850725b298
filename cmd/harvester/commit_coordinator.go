package main

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	lkafka "github.com/t-fbd/loc-api/internal/kafka"
	"github.com/t-fbd/loc-api/internal/metrics"
)

// commitCoordinator buffers completed messages per partition and commits in offset order.
type commitCoordinator struct {
	reader     lkafka.MessageReader            // job reader whose offsets are committed
	commitCh   <-chan kafka.Message            // finished jobs from the worker goroutines
	nextOffset map[int]int64                   // per partition: next offset to commit
	pending    map[int]map[int64]kafka.Message // per partition: completed messages by offset
	mu         sync.Mutex                      // guards nextOffset and pending
}

// newCommitCoordinator returns a coordinator that commits the messages arriving on
// commitCh in per-partition offset order. Start it with run.
func newCommitCoordinator(reader lkafka.MessageReader, commitCh <-chan kafka.Message) *commitCoordinator {
	return &commitCoordinator{
		reader:     reader,
		commitCh:   commitCh,
		nextOffset: make(map[int]int64),
		pending:    make(map[int]map[int64]kafka.Message),
	}
}

// run buffers every message from commitCh and commits the contiguous run of its
// partition. It flushes and calls wg.Done when ctx is done or commitCh closes.
func (c *commitCoordinator) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			c.flush(ctx)
			return
		case msg, ok := <-c.commitCh:
			if !ok {
				c.flush(ctx)
				return
			}
			c.enqueue(msg)
			c.drain(ctx, msg.Partition)
		}
	}
}

// enqueue buffers msg. The first offset seen on a partition becomes its starting point.
func (c *commitCoordinator) enqueue(msg kafka.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := msg.Partition
	if c.pending[p] == nil {
		c.pending[p] = make(map[int64]kafka.Message)
	}
	c.pending[p][msg.Offset] = msg
	metrics.CommitPending.Inc()
	if _, exists := c.nextOffset[p]; !exists {
		c.nextOffset[p] = msg.Offset
	}
}

// commitNext commits the next contiguous offset of partition. Caller holds c.mu;
// the lock is released around CommitMessages. A failed commit is re-queued and
// nextOffset does not move.
func (c *commitCoordinator) commitNext(ctx context.Context, partition int, phase string) bool {
	next := c.nextOffset[partition]
	m, ok := c.pending[partition][next]
	if !ok {
		return false
	}
	delete(c.pending[partition], next)
	metrics.CommitPending.Dec()
	c.mu.Unlock()
	start := time.Now()
	err := c.reader.CommitMessages(ctx, m)
	metrics.CommitLatency.Observe(time.Since(start).Seconds())
	c.mu.Lock()
	if err != nil {
		metrics.CommitErrors.Inc()
		log.Error().Err(err).Str("phase", phase).Int("partition", partition).Int64("offset", next).Msg("commit")
		// back in the buffer for the next drain; stop here instead of retrying a failing broker
		c.pending[partition][next] = m
		metrics.CommitPending.Inc()
		return false
	}
	c.nextOffset[partition] = next + 1
	return true
}

// drain commits partition from nextOffset until it reaches an offset that has not
// finished yet.
func (c *commitCoordinator) drain(ctx context.Context, partition int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.commitNext(ctx, partition, "drain") {
	}
}

// flush commits what is still contiguous on shutdown. Gaps left by unfinished
// jobs stay uncommitted and are redelivered to the group.
func (c *commitCoordinator) flush(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.pending {
		for c.commitNext(ctx, p, "flush") {
		}
	}
}

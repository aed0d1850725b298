package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/t-fbd/loc-api/common"
	"github.com/t-fbd/loc-api/internal/harvest"
	lkafka "github.com/t-fbd/loc-api/internal/kafka"
	"github.com/t-fbd/loc-api/internal/loc"
	"github.com/t-fbd/loc-api/internal/metrics"
	"github.com/t-fbd/loc-api/internal/models"
	"github.com/t-fbd/loc-api/internal/store"
)

// jobProcessor runs one harvest job. *harvest.Harvester satisfies it.
type jobProcessor interface {
	Process(ctx context.Context, job models.HarvestJob) (models.HarvestStatus, error)
}

type worker struct {
	reader     lkafka.MessageReader
	processor  jobProcessor
	jobTimeout time.Duration // per-job deadline so one stuck job cannot hold a slot
	commitCh   chan<- kafka.Message
	sem        chan struct{}
	wg         *sync.WaitGroup
}

func newWorker(reader lkafka.MessageReader, processor jobProcessor, concurrentJobs int, jobTimeout time.Duration, commitCh chan<- kafka.Message, wg *sync.WaitGroup) *worker {
	if concurrentJobs < 1 {
		concurrentJobs = 1
	}
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	return &worker{
		reader:     reader,
		processor:  processor,
		jobTimeout: jobTimeout,
		commitCh:   commitCh,
		sem:        make(chan struct{}, concurrentJobs),
		wg:         wg,
	}
}

func main() {
	common.SetupLogging()

	broker := common.GetEnv("KAFKA_BROKER", "localhost:9092")
	jobsTopic := common.GetEnv("KAFKA_TOPIC", "loc.harvest.jobs")
	groupID := common.GetEnv("KAFKA_GROUP_ID", "loc-harvester")
	recordsTopic := common.GetEnv("KAFKA_RECORDS_TOPIC", "loc.harvest.records")
	edgesTopic := common.GetEnv("KAFKA_EDGES_TOPIC", "loc.graph.edges")
	dlqTopic := common.GetEnv("KAFKA_DLQ_TOPIC", "loc.harvest.dlq")
	redisAddr := common.GetEnv("REDIS_ADDR", "localhost:6379")
	statusTTL := common.ParseDuration(common.GetEnv("STATUS_TTL", "24h"), 24*time.Hour)
	dedupeTTL := common.ParseDuration(common.GetEnv("DEDUPE_TTL", "24h"), 24*time.Hour)
	baseURL := common.GetEnv("LOC_API_BASE_URL", loc.DefaultBaseURL)
	userAgent := common.GetEnv("LOC_USER_AGENT", loc.DefaultUserAgent)
	pageDelay := common.ParseDuration(common.GetEnv("PAGE_DELAY", "1s"), time.Second)
	concurrentJobs := common.ParseInt(common.GetEnv("CONCURRENT_JOBS", "5"), 5)
	jobTimeout := common.ParseDuration(common.GetEnv("JOB_TIMEOUT", "5m"), 5*time.Minute)
	metricsAddr := common.GetEnv("METRICS_ADDR", ":9090")

	reader := lkafka.NewReader(broker, jobsTopic, groupID)
	defer closeLogged("jobs reader", reader.Close)

	dedupe := store.NewRedisDedupeStore(redisAddr)
	defer closeLogged("redis dedupe", dedupe.Close)
	status := store.NewRedisStatusStore(redisAddr, store.DefaultStatusPrefix, statusTTL)
	defer closeLogged("redis status", status.Close)

	recordsWriter := lkafka.NewWriter(broker, recordsTopic)
	defer closeLogged("records writer", recordsWriter.Close)
	edgesWriter := lkafka.NewWriter(broker, edgesTopic)
	defer closeLogged("edges writer", edgesWriter.Close)
	dlqWriter := lkafka.NewWriter(broker, dlqTopic)
	defer closeLogged("dlq writer", dlqWriter.Close)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		metrics.Serve(ctx, metricsAddr)
	}

	fetcher := metrics.InstrumentFetcher(loc.NewHTTPFetcher(buildHTTPClient()).WithUserAgent(userAgent))
	client := loc.NewClient(loc.Config{BaseURL: baseURL, Fetcher: fetcher, Logger: &log.Logger})

	var robots *loc.RobotsRules
	if common.ParseBool(common.GetEnv("RESPECT_ROBOTS_TXT", ""), false) {
		robotsCtx, robotsCancel := context.WithTimeout(ctx, 15*time.Second)
		body, err := loc.FetchRobots(robotsCtx, fetcher, client.BaseURL())
		robotsCancel()
		if err != nil {
			log.Warn().Err(err).Msg("robots.txt fetch failed, allowing all paths")
		} else {
			robots = loc.ParseRobots(body, userAgent)
			log.Info().Msg("loaded robots.txt")
		}
	}

	harvester := harvest.New(harvest.Config{
		Catalog:   client,
		Dedupe:    dedupe,
		Status:    status,
		Records:   recordsWriter,
		Edges:     edgesWriter,
		DLQ:       dlqWriter,
		DedupeTTL: dedupeTTL,
		Robots:    robots,
		PageDelay: pageDelay,
		Logger:    &log.Logger,
	})

	commitCh := make(chan kafka.Message, concurrentJobs*2)
	coordinator := newCommitCoordinator(reader, commitCh)
	var coordWg sync.WaitGroup
	coordWg.Add(1)
	go coordinator.run(ctx, &coordWg)

	log.Info().
		Str("topic", jobsTopic).
		Str("group", groupID).
		Str("broker", broker).
		Str("base_url", client.BaseURL()).
		Int("concurrent_jobs", concurrentJobs).
		Msg("harvester consuming")

	var wg sync.WaitGroup
	w := newWorker(reader, harvester, concurrentJobs, jobTimeout, commitCh, &wg)
	w.run(ctx)
	wg.Wait()
	close(commitCh)
	coordWg.Wait()
}

func closeLogged(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Error().Err(err).Str("resource", name).Msg("close")
	}
}

// run fetches jobs and dispatches them until ctx is done.
func (w *worker) run(ctx context.Context) {
	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Msg("fetch message")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if err := w.dispatchMessage(ctx, msg); err != nil {
			log.Error().Err(err).Msg("dispatch")
		}
	}
}

// dispatchMessage decodes msg and hands it to a bounded goroutine. Undecodable
// payloads are committed straight away.
func (w *worker) dispatchMessage(ctx context.Context, msg kafka.Message) error {
	var job models.HarvestJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		metrics.HarvestJobs.WithLabelValues("invalid").Inc()
		log.Warn().Err(err).Int("partition", msg.Partition).Int64("offset", msg.Offset).Msg("invalid job payload")
		w.commitCh <- msg
		return nil
	}
	metrics.HarvestJobs.WithLabelValues("received").Inc()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case w.sem <- struct{}{}:
	}
	w.wg.Add(1)
	go w.processJobAsync(ctx, msg, job)
	return nil
}

// processJobAsync runs one job under its own deadline. The deferred send to
// commitCh advances the partition even when the job fails or times out.
func (w *worker) processJobAsync(ctx context.Context, msg kafka.Message, job models.HarvestJob) {
	defer func() {
		<-w.sem
		w.wg.Done()
		w.commitCh <- msg
	}()

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	log.Info().
		Str("session_id", job.SessionID).
		Str("kind", string(job.Kind)).
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("received job")
	status, err := w.processor.Process(jobCtx, job)
	if err != nil {
		log.Error().Err(err).Str("session_id", job.SessionID).Msg("job failed")
		return
	}
	log.Info().
		Str("session_id", job.SessionID).
		Int("pages", status.Pages).
		Int("records", status.Records).
		Msg("job done")
}

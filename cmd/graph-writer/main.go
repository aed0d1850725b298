package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/t-fbd/loc-api/common"
	"github.com/t-fbd/loc-api/internal/graph"
	lkafka "github.com/t-fbd/loc-api/internal/kafka"
	"github.com/t-fbd/loc-api/internal/metrics"
	"github.com/t-fbd/loc-api/internal/models"
)

// payloadHandler writes one decoded Kafka payload to the graph.
type payloadHandler func(ctx context.Context, payload []byte) error

func main() {
	common.SetupLogging()

	broker := common.GetEnv("KAFKA_BROKER", "localhost:9092")
	recordsTopic := common.GetEnv("KAFKA_RECORDS_TOPIC", "loc.harvest.records")
	edgesTopic := common.GetEnv("KAFKA_EDGES_TOPIC", "loc.graph.edges")
	recordsGroup := common.GetEnv("KAFKA_RECORDS_GROUP", "loc-graph-records")
	edgesGroup := common.GetEnv("KAFKA_EDGES_GROUP", "loc-graph-edges")
	metricsAddr := common.GetEnv("METRICS_ADDR", ":9091")

	neo4jURI := common.GetEnv("NEO4J_URI", "neo4j://localhost:7687")
	neo4jUser := common.GetEnv("NEO4J_USER", "neo4j")
	neo4jPassword := common.GetEnv("NEO4J_PASSWORD", "neo4j")

	driver, err := graph.NewDriver(neo4jURI, neo4jUser, neo4jPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("neo4j driver")
	}
	defer func() {
		if err := driver.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("neo4j close")
		}
	}()

	writer := graph.NewWriter(driver)

	recordsReader := lkafka.NewReader(broker, recordsTopic, recordsGroup)
	defer func() {
		if err := recordsReader.Close(); err != nil {
			log.Error().Err(err).Msg("records reader close")
		}
	}()

	edgesReader := lkafka.NewReader(broker, edgesTopic, edgesGroup)
	defer func() {
		if err := edgesReader.Close(); err != nil {
			log.Error().Err(err).Msg("edges reader close")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		metrics.Serve(ctx, metricsAddr)
	}

	log.Info().Str("records", recordsTopic).Str("edges", edgesTopic).Str("neo4j", neo4jURI).Msg("graph writer consuming")
	go consume(ctx, recordsReader, "record", recordHandler(writer))
	go consume(ctx, edgesReader, "edge", edgeHandler(writer))

	<-ctx.Done()
}

// consume writes every fetched message through handle and commits it only
// after a successful write.
func consume(ctx context.Context, reader lkafka.MessageReader, kind string, handle payloadHandler) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("kind", kind).Msg("fetch message")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		metrics.GraphWrites.WithLabelValues(kind, "received").Inc()
		if err := handle(ctx, msg.Value); err != nil {
			metrics.GraphWrites.WithLabelValues(kind, "failed").Inc()
			log.Error().Err(err).Str("kind", kind).Int64("offset", msg.Offset).Msg("graph write")
			continue
		}
		metrics.GraphWrites.WithLabelValues(kind, "written").Inc()

		if err := reader.CommitMessages(ctx, msg); err != nil {
			metrics.CommitErrors.Inc()
			log.Error().Err(err).Str("kind", kind).Msg("commit")
		}
	}
}

func recordHandler(writer *graph.Writer) payloadHandler {
	return func(ctx context.Context, payload []byte) error {
		var record models.HarvestRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return errors.Wrap(err, "decode record")
		}
		return writer.WriteRecord(ctx, record)
	}
}

func edgeHandler(writer *graph.Writer) payloadHandler {
	return func(ctx context.Context, payload []byte) error {
		var edge models.Edge
		if err := json.Unmarshal(payload, &edge); err != nil {
			return errors.Wrap(err, "decode edge")
		}
		return writer.WriteEdge(ctx, edge)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"

	"github.com/t-fbd/loc-api/internal/graph"
	"github.com/t-fbd/loc-api/internal/metrics"
	"github.com/t-fbd/loc-api/internal/models"
	"github.com/t-fbd/loc-api/mocks"
)

func newCountingWriter(t *testing.T, writeErr error) (*graph.Writer, *int) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	driver := mocks.NewMockDriverSessioner(ctrl)
	session := mocks.NewMockSessionRunner(ctrl)
	calls := 0

	driver.EXPECT().NewSession(gomock.Any(), gomock.Any()).Return(session).AnyTimes()
	session.EXPECT().Close(gomock.Any()).Return(nil).AnyTimes()
	session.EXPECT().ExecuteWrite(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, work neo4j.ManagedTransactionWork, _ ...func(*neo4j.TransactionConfig)) (any, error) {
			calls++
			return nil, writeErr
		},
	).AnyTimes()

	return graph.NewWriter(driver), &calls
}

func TestRecordHandlerDecodes(t *testing.T) {
	writer, calls := newCountingWriter(t, nil)
	handle := recordHandler(writer)

	if err := handle(context.Background(), []byte("{broken")); err == nil {
		t.Fatal("expected decode error")
	}
	payload, _ := json.Marshal(models.HarvestRecord{SessionID: "s1", ItemID: "2014717546", NodeType: models.NodeTypeItem})
	if err := handle(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 write, got %d", *calls)
	}
}

func TestEdgeHandlerSkipsIncompleteEdge(t *testing.T) {
	writer, calls := newCountingWriter(t, nil)
	payload, _ := json.Marshal(models.Edge{From: "2014717546"})
	if err := edgeHandler(writer)(context.Background(), payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *calls != 0 {
		t.Fatalf("expected no writes, got %d", *calls)
	}
}

func TestConsumeRecordsCommitsOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	reader := mocks.NewMockMessageReader(ctrl)
	writer, calls := newCountingWriter(t, nil)

	payload, err := json.Marshal(models.HarvestRecord{
		SessionID: "s1",
		ItemID:    "2014717546",
		NodeType:  models.NodeTypeItem,
		Title:     "Map of the seat of war",
	})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gomock.InOrder(
		reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Value: payload}, nil),
		reader.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, ...kafka.Message) error {
				cancel()
				return nil
			},
		),
		reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, context.Canceled),
	)

	before := testutil.ToFloat64(metrics.GraphWrites.WithLabelValues("record", "written"))
	consume(ctx, reader, "record", recordHandler(writer))

	if *calls != 1 {
		t.Fatalf("expected 1 write, got %d", *calls)
	}
	if got := testutil.ToFloat64(metrics.GraphWrites.WithLabelValues("record", "written")) - before; got != 1 {
		t.Fatalf("expected records written +1, got %v", got)
	}
}

func TestConsumeEdgesCommitsOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	reader := mocks.NewMockMessageReader(ctrl)
	writer, calls := newCountingWriter(t, nil)

	payload, err := json.Marshal(models.Edge{
		SessionID: "s1",
		From:      "2014717546",
		FromType:  models.NodeTypeItem,
		To:        "maps",
		ToType:    models.NodeTypeSubject,
		Relation:  models.RelationSubject,
	})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gomock.InOrder(
		reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Value: payload}, nil),
		reader.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, ...kafka.Message) error {
				cancel()
				return nil
			},
		),
		reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{}, context.Canceled),
	)

	consume(ctx, reader, "edge", edgeHandler(writer))

	if *calls != 1 {
		t.Fatalf("expected 1 write, got %d", *calls)
	}
}

func TestConsumeDoesNotCommitFailedWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	reader := mocks.NewMockMessageReader(ctrl)
	writer, _ := newCountingWriter(t, errors.New("neo4j unavailable"))
	payload, _ := json.Marshal(models.HarvestRecord{ItemID: "1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gomock.InOrder(
		reader.EXPECT().FetchMessage(gomock.Any()).Return(kafka.Message{Value: payload}, nil),
		reader.EXPECT().FetchMessage(gomock.Any()).DoAndReturn(func(context.Context) (kafka.Message, error) {
			cancel()
			return kafka.Message{}, context.Canceled
		}),
	)
	reader.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Times(0)

	before := testutil.ToFloat64(metrics.GraphWrites.WithLabelValues("record", "failed"))
	consume(ctx, reader, "record", recordHandler(writer))
	if got := testutil.ToFloat64(metrics.GraphWrites.WithLabelValues("record", "failed")) - before; got != 1 {
		t.Fatalf("expected failed +1, got %v", got)
	}
}

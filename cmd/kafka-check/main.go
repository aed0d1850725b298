package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/t-fbd/loc-api/common"
)

// defaultTopics are the topics the pipeline reads and writes.
var defaultTopics = []string{"loc.harvest.jobs", "loc.harvest.records", "loc.graph.edges", "loc.harvest.dlq"}

func main() {
	broker := common.GetEnv("KAFKA_BROKER", "localhost:9092")
	topics := common.SplitList(common.GetEnv("KAFKA_TOPICS", ""), ",")
	if len(topics) == 0 {
		topics = defaultTopics
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", broker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to Kafka at %s: %v\n", broker, err)
		os.Exit(1)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read metadata: %v\n", err)
		os.Exit(1)
	}

	counts := partitionCounts(partitions)
	missing := missingTopics(counts, topics)
	for _, topic := range topics {
		if n, ok := counts[topic]; ok {
			fmt.Printf("topic %s: %d partitions\n", topic, n)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "missing topics on %s: %v\n", broker, missing)
		os.Exit(1)
	}
	fmt.Printf("connected to Kafka at %s, %d topics ready\n", broker, len(topics))
}

func partitionCounts(partitions []kafka.Partition) map[string]int {
	counts := make(map[string]int)
	for _, p := range partitions {
		counts[p.Topic]++
	}
	return counts
}

func missingTopics(counts map[string]int, want []string) []string {
	var missing []string
	for _, topic := range want {
		if counts[topic] == 0 {
			missing = append(missing, topic)
		}
	}
	sort.Strings(missing)
	return missing
}

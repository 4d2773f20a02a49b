//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/laudo-service/internal/adapter/kafka"
	"github.com/couchcryptid/laudo-service/internal/adapter/pdf"
	"github.com/couchcryptid/laudo-service/internal/config"
	"github.com/couchcryptid/laudo-service/internal/document"
	"github.com/couchcryptid/laudo-service/internal/domain"
	"github.com/couchcryptid/laudo-service/internal/export"
	"github.com/couchcryptid/laudo-service/internal/observability"
	"github.com/couchcryptid/laudo-service/internal/registry"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-laudos-exported"

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("laudo-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestExportPublishesRecord runs a real export and reads the announced record
// back from Kafka.
func TestExportPublishesRecord(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	publisher := kafka.NewPublisher(cfg, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	mem := registry.NewMemoryRegistry(map[string]string{registry.KeyCount: "7"})
	roster, err := registry.OpenRoster(ctx, mem, logger)
	require.NoError(t, err)

	fonts, err := document.LoadFonts()
	require.NoError(t, err)

	clock := clockwork.NewRealClock()
	pipeline := export.New(
		document.NewComposer(fonts),
		document.BlankTemplate{},
		document.NewRasterizer(fonts),
		pdf.NewPackager(95, "integration", clock),
		roster,
		publisher,
		export.Options{Scale: 1, Location: time.UTC},
		clock, observability.NewMetricsForTesting(), logger,
	)

	report := domain.NewReport(7, time.Now(), domain.DefaultMunicipality, "Daniel")
	_, err = report.ToggleDamage("Destelhamento")
	require.NoError(t, err)

	res, err := pipeline.Export(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 8, roster.NextSequence())

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer consumer.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read export record")

	assert.Equal(t, res.ControlNumber, string(msg.Key))

	var rec domain.ExportRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec))
	assert.Equal(t, 7, rec.ReportID)
	assert.Equal(t, res.ControlNumber, rec.ControlNumber)
	assert.Equal(t, []string{"Destelhamento"}, rec.Categories)
	assert.Equal(t, len(res.PDF), rec.PDFBytes)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Danos Mínimos", headers["classificacao"])
	assert.Equal(t, domain.DefaultMunicipality, headers["municipio"])
	assert.NotEmpty(t, headers["exported_at"])
}

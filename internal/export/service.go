package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/FabianHardy/stm-v2-sub000/internal/erp"
	kafkax "github.com/FabianHardy/stm-v2-sub000/internal/kafka"
	"github.com/FabianHardy/stm-v2-sub000/internal/orders"
	"github.com/FabianHardy/stm-v2-sub000/internal/redisx"
)

// ErrSyncFailed wraps export failures whose outcome is already settled on
// the order (status flipped to error, or the order must not be exported).
// Event redelivery cannot help; the regeneration endpoint retries these.
var ErrSyncFailed = errors.New("order sync failed")

type OrderSource interface {
	GetExport(ctx context.Context, orderID string) (*orders.ExportOrder, error)
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) error
}

type ArtifactWriter interface {
	Write(country string, doc erp.Document, ts time.Time) (string, error)
}

// Service renders finalized orders into the ERP exchange format and records
// the sync outcome. Producers may be nil when the caller only needs the
// synchronous Export path.
type Service struct {
	Orders      OrderSource
	Writer      ArtifactWriter
	Redis       *redis.Client
	ProducerOK  *kafkax.Producer // promo.order.synced
	ProducerErr *kafkax.Producer // promo.order.sync.failed
	ServiceName string
	Log         *zap.Logger
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// HandleOrderFinalized is the consumer handler for promo.order.finalized.
func (s *Service) HandleOrderFinalized(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderFinalized {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "exporter", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderFinalizedPayload](env.Payload)
	if err != nil {
		return err
	}

	if _, err := s.Export(ctx, p.OrderID); err != nil {
		if !errors.Is(err, ErrSyncFailed) && !errors.Is(err, orders.ErrNotFound) {
			// nothing was recorded on the order yet; leave the offset
			// uncommitted so redelivery retries the export
			return err
		}
		s.Log.Error("export failed", zap.String("order_id", p.OrderID), zap.Error(err))
	}

	// dedup only once the outcome is settled
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}

// Export renders and writes the artifact for one order, then transitions
// its status. Shared by the consumer and the regeneration endpoint.
func (s *Service) Export(ctx context.Context, orderID string) (string, error) {
	rec, err := s.Orders.GetExport(ctx, orderID)
	if err != nil {
		return "", err
	}
	if rec.Status == orders.StatusCancelled {
		return "", fmt.Errorf("order %s is cancelled: %w", orderID, ErrSyncFailed)
	}

	ts := s.now()
	doc := erp.Document{
		Date:           ts,
		DeliveryDate:   rec.DeliveryDate,
		CustomerNumber: rec.CustomerNumber,
		OrderType:      rec.OrderType,
		CampaignName:   rec.CampaignName,
	}
	for _, l := range rec.Lines {
		doc.Lines = append(doc.Lines, erp.Line{ProductCode: l.ProductCode, Quantity: l.Quantity})
	}

	path, err := s.Writer.Write(rec.Country, doc, ts)
	if err != nil {
		if serr := s.Orders.UpdateStatus(ctx, orderID, orders.StatusError); serr != nil {
			// the failure could not be recorded, so it stays retryable
			s.Log.Error("mark error", zap.String("order_id", orderID), zap.Error(serr))
			return "", err
		}
		s.publishFailed(orderID, err.Error())
		return "", fmt.Errorf("%v: %w", err, ErrSyncFailed)
	}

	if err := s.Orders.UpdateStatus(ctx, orderID, orders.StatusSynced); err != nil {
		return path, err
	}
	s.publishSynced(orderID, path)
	return path, nil
}

func (s *Service) publishSynced(orderID, file string) {
	if s.ProducerOK == nil {
		return
	}
	ev := s.envelope(orders.EventOrderSynced, orderID,
		kafkax.MustMarshal(orders.OrderSyncedPayload{OrderID: orderID, File: file}))
	s.ProducerOK.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderSynced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) publishFailed(orderID, reason string) {
	if s.ProducerErr == nil {
		return
	}
	ev := s.envelope(orders.EventOrderSyncFailed, orderID,
		kafkax.MustMarshal(orders.OrderSyncFailedPayload{OrderID: orderID, Reason: reason}))
	s.ProducerErr.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderSyncFailed)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) envelope(eventType, orderID string, payload json.RawMessage) orders.Envelope {
	return orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       payload,
	}
}

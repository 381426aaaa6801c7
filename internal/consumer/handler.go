package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"attribution/internal/instrumentation"
	"attribution/internal/models"
)

// EventSink persists decoded events.
type EventSink interface {
	SaveVisit(ctx context.Context, env models.EventEnvelope, p models.VisitPayload) error
	SaveConversion(ctx context.Context, env models.EventEnvelope, p models.ConversionPayload) error
	SaveExposure(ctx context.Context, env models.EventEnvelope, p models.ExposurePayload) error
}

// StoreHandler returns a handler that decodes each envelope's payload by type and writes it to sink.
func StoreHandler(sink EventSink, m *instrumentation.Metrics) EventHandler {
	return func(ctx context.Context, env *models.EventEnvelope, streamID string) error {
		var err error
		switch env.Type {
		case models.EventTypeVisit:
			var p models.VisitPayload
			if err = json.Unmarshal(env.Payload, &p); err == nil {
				err = sink.SaveVisit(ctx, *env, p)
			}
		case models.EventTypeConversion:
			var p models.ConversionPayload
			if err = json.Unmarshal(env.Payload, &p); err == nil {
				err = sink.SaveConversion(ctx, *env, p)
			}
		case models.EventTypeExposure:
			var p models.ExposurePayload
			if err = json.Unmarshal(env.Payload, &p); err == nil {
				err = sink.SaveExposure(ctx, *env, p)
			}
		default:
			return fmt.Errorf("unknown event type %q", env.Type)
		}
		if err != nil {
			if m != nil {
				m.RecordError("consumer", env.Type)
			}
			return err
		}

		if m != nil {
			m.RecordIngested(env.Type)
		}
		return nil
	}
}

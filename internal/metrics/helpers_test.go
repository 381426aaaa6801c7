package metrics

import (
	"time"

	"attribution/internal/models"
)

var day0 = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func visit(client, referrer, impressionID string, ts time.Time) models.VisitEvent {
	return models.VisitEvent{
		ClientID:     client,
		Referrer:     referrer,
		Timestamp:    ts,
		Date:         models.DateOf(ts),
		ImpressionID: impressionID,
	}
}

func conversion(device, impressionID string, ts time.Time) models.ConversionEvent {
	return models.ConversionEvent{
		DeviceID:     device,
		ImpressionID: impressionID,
		Timestamp:    ts,
		Date:         models.DateOf(ts),
	}
}

func exposure(device string, ts time.Time) models.ExposureEvent {
	return models.ExposureEvent{DeviceID: device, Timestamp: ts}
}

func findRow(rows []models.AttributionRow, source string) (models.AttributionRow, bool) {
	for _, r := range rows {
		if r.Source == source {
			return r, true
		}
	}
	return models.AttributionRow{}, false
}

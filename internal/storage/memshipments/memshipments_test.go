package memshipments

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/ShipTrack/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestStorage_ShipmentRoundTrip(t *testing.T) {
	st := New()
	ctx := context.Background()

	sh := &models.Shipment{TrackingNumber: "CD1", DestinationCountry: "Guyana"}
	require.NoError(t, st.CreateShipment(ctx, sh))
	require.NotEmpty(t, sh.ID)
	require.Equal(t, models.ShipmentStatusPending, sh.Status)

	err := st.CreateShipment(ctx, &models.Shipment{TrackingNumber: "CD1"})
	require.True(t, errors.Is(err, ErrDuplicateTrackingNumber))

	got, err := st.GetShipmentByTrackingNumber(ctx, "CD1")
	require.NoError(t, err)
	require.Equal(t, sh.ID, got.ID)

	// returned values are copies
	got.Status = "tampered"
	again, _ := st.GetShipmentByTrackingNumber(ctx, "CD1")
	require.Equal(t, models.ShipmentStatusPending, again.Status)

	_, err = st.GetShipmentByTrackingNumber(ctx, "missing")
	require.True(t, errors.Is(err, models.ErrShipmentNotFound))
}

func TestStorage_MilestonesSetOnce(t *testing.T) {
	st := New()
	ctx := context.Background()
	sh := &models.Shipment{TrackingNumber: "CD1"}
	require.NoError(t, st.CreateShipment(ctx, sh))

	t1 := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	upd, err := st.UpdateShipmentStatus(ctx, models.ShipmentStatusUpdate{ShipmentID: sh.ID, Status: "shipped", UpdatedAt: t1, ShippedAt: &t1})
	require.NoError(t, err)
	require.Equal(t, t1, *upd.ShippedAt)

	upd, err = st.UpdateShipmentStatus(ctx, models.ShipmentStatusUpdate{ShipmentID: sh.ID, Status: "shipped", UpdatedAt: t2, ShippedAt: &t2})
	require.NoError(t, err)
	require.Equal(t, t1, *upd.ShippedAt)
	require.Equal(t, t2, upd.UpdatedAt)
	require.Nil(t, upd.DeliveredAt)

	_, err = st.UpdateShipmentStatus(ctx, models.ShipmentStatusUpdate{ShipmentID: "nope", Status: "x"})
	require.True(t, errors.Is(err, models.ErrShipmentNotFound))
}

func TestStorage_LedgersOrderedOldestFirst(t *testing.T) {
	st := New()
	ctx := context.Background()
	sh := &models.Shipment{TrackingNumber: "CD1"}
	require.NoError(t, st.CreateShipment(ctx, sh))

	base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.AppendTrackingEvent(ctx, &models.TrackingEvent{ShipmentID: sh.ID, EventType: "b", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, st.AppendTrackingEvent(ctx, &models.TrackingEvent{ShipmentID: sh.ID, EventType: "a", Timestamp: base}))
	require.NoError(t, st.AppendTrackingEvent(ctx, &models.TrackingEvent{ShipmentID: sh.ID, EventType: "c", Timestamp: base.Add(time.Minute)}))

	evs, err := st.ListTrackingEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{evs[0].EventType, evs[1].EventType, evs[2].EventType})
	require.NotEmpty(t, evs[0].ID)

	err = st.AppendTrackingEvent(ctx, &models.TrackingEvent{ShipmentID: "ghost"})
	require.True(t, errors.Is(err, models.ErrShipmentNotFound))

	require.NoError(t, st.AppendScanLog(ctx, &models.ScanLog{ShipmentID: sh.ID, ScanType: "shipped", ScanTimestamp: base}))
	scans, err := st.ListScanLogs(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, scans, 1)

	require.NoError(t, st.RecordNotification(ctx, &models.NotificationLog{ShipmentID: sh.ID, Status: models.NotificationStatusDemo}))
	logs, err := st.ListNotifications(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	empty, err := st.ListTrackingEvents(ctx, "other")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestStorage_ConcurrentAppends(t *testing.T) {
	st := New()
	ctx := context.Background()
	sh := &models.Shipment{TrackingNumber: "CD1"}
	require.NoError(t, st.CreateShipment(ctx, sh))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.AppendTrackingEvent(ctx, &models.TrackingEvent{ShipmentID: sh.ID, Timestamp: time.Now()})
			_, _ = st.GetShipmentByTrackingNumber(ctx, "CD1")
		}()
	}
	wg.Wait()

	evs, err := st.ListTrackingEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, evs, 50)
}

const seedYAML = `
shipments:
  - tracking_number: CD123456789
    status: pending
    customer_name: Test Customer
    customer_email: customer@example.com
    destination_country: Jamaica
    created_at: 2025-01-15T00:00:00Z
  - tracking_number: CD987654321
    status: received
    destination_country: Guyana
    created_at: 2025-01-10T00:00:00Z
`

func TestStorage_LoadSeed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte(seedYAML), 0o600))

	st := New()
	n, err := st.LoadSeed(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	sh, err := st.GetShipmentByTrackingNumber(context.Background(), "CD123456789")
	require.NoError(t, err)
	require.Equal(t, "Jamaica", sh.DestinationCountry)
	require.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), sh.CreatedAt.UTC())
	require.Equal(t, "customer@example.com", sh.CustomerEmail)
}

func TestStorage_LoadSeed_Errors(t *testing.T) {
	st := New()
	_, err := st.LoadSeed(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = st.LoadSeedYAML(context.Background(), []byte("shipments:\n  - status: pending\n"))
	require.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestStorage_LoadSeed_ShippedSample(t *testing.T) {
	st := New()
	n, err := st.LoadSeed(context.Background(), filepath.Join("..", "..", "..", "configs", "seed.yaml"))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	sh, err := st.GetShipmentByTrackingNumber(context.Background(), "CD987654321")
	require.NoError(t, err)
	require.Equal(t, "Guyana", sh.DestinationCountry)
	require.Equal(t, models.ShipmentStatusReceived, sh.Status)
}

func TestStorage_ListShipments(t *testing.T) {
	st := New()
	ctx := context.Background()
	base := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	for i, sh := range []*models.Shipment{
		{TrackingNumber: "CD100", Status: "pending", CustomerName: "Marcia Brown", CustomerEmail: "marcia@example.com"},
		{TrackingNumber: "CD200", Status: "shipped", CustomerName: "Devon Grant", CustomerEmail: "devon@example.com"},
		{TrackingNumber: "CD300", Status: "shipped", CustomerName: "Andre Marsh", CustomerEmail: "andre@example.com"},
		{TrackingNumber: "GY400", Status: "delivered", CustomerName: "Keisha Lee", CustomerEmail: "k.lee@example.com"},
	} {
		sh.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, st.CreateShipment(ctx, sh))
	}

	trackingNumbers := func(list []*models.Shipment) []string {
		out := make([]string, 0, len(list))
		for _, sh := range list {
			out = append(out, sh.TrackingNumber)
		}
		return out
	}

	all, err := st.ListShipments(ctx, models.ShipmentFilter{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"GY400", "CD300", "CD200", "CD100"}, trackingNumbers(all))

	shipped, err := st.ListShipments(ctx, models.ShipmentFilter{Status: "shipped", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"CD300", "CD200"}, trackingNumbers(shipped))

	// name, email and tracking number, case-insensitive
	found, err := st.ListShipments(ctx, models.ShipmentFilter{Search: "MAR", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"CD300", "CD100"}, trackingNumbers(found))
	found, err = st.ListShipments(ctx, models.ShipmentFilter{Search: "gy4", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, []string{"GY400"}, trackingNumbers(found))

	page, err := st.ListShipments(ctx, models.ShipmentFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"CD300", "CD200"}, trackingNumbers(page))

	past, err := st.ListShipments(ctx, models.ShipmentFilter{Limit: 2, Offset: 10})
	require.NoError(t, err)
	require.Empty(t, past)

	counts, err := st.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"pending": 1, "shipped": 2, "delivered": 1}, counts)
}

package statuspolicy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInfo_KnownStatuses(t *testing.T) {
	cases := map[string]int{
		"pending":    10,
		"received":   25,
		"processing": 50,
		"shipped":    75,
		"delivered":  100,
	}
	for status, progress := range cases {
		si := Info(status)
		require.Equal(t, progress, si.Progress, status)
		require.NotEmpty(t, si.Display, status)
		require.NotEmpty(t, si.Color, status)
	}
	require.Equal(t, "green", Info("delivered").Color)
}

func TestInfo_UnknownFallsBack(t *testing.T) {
	si := Info("frobnicated")
	require.Equal(t, "Frobnicated", si.Display)
	require.Equal(t, "Package status: frobnicated", si.Description)
	require.Equal(t, 0, si.Progress)
	require.Equal(t, "gray", si.Color)

	require.Equal(t, "Out For Delivery", Info("out for delivery").Display)
	require.Equal(t, "IN_TRANSIT", Info("IN_TRANSIT").Display)
}

func TestInfo_TotalOnMalformedInput(t *testing.T) {
	for _, s := range []string{"", " ", "\x00", "\xff\xfe", "Shipped", "😀 odd"} {
		require.NotPanics(t, func() {
			si := Info(s)
			require.GreaterOrEqual(t, si.Progress, 0)
			require.LessOrEqual(t, si.Progress, 100)
		}, "%q", s)
	}
}

func TestRank(t *testing.T) {
	require.Equal(t, 0, Rank("pending"))
	require.Equal(t, 4, Rank("delivered"))
	require.Less(t, Rank("received"), Rank("shipped"))
	require.Equal(t, -1, Rank("frobnicated"))
	require.True(t, IsKnown("processing"))
	require.False(t, IsKnown("lost"))
	require.Len(t, Statuses(), 5)
}

func TestTransitDays(t *testing.T) {
	require.Equal(t, 7, TransitDays("Jamaica"))
	require.Equal(t, 10, TransitDays("Guyana"))
	require.Equal(t, 14, TransitDays("French Guiana"))
	require.Equal(t, DefaultTransitDays, TransitDays("Atlantis"))
	require.Equal(t, DefaultTransitDays, TransitDays(""))
}

func TestEstimateDelivery(t *testing.T) {
	created := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC), EstimateDelivery(created, "Guyana"))
	require.Equal(t, time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC), EstimateDelivery(created, "Jamaica"))
}

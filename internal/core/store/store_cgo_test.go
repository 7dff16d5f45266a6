//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phishnix/phishnix/internal/config"
	"github.com/phishnix/phishnix/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), config.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func safeVerdict(link string) core.AnalysisVerdict {
	return core.AnalysisVerdict{
		IsSafe:     true,
		Reasoning:  "Established domain with a long registration history.",
		TrustScore: 1,
		URL:        link,
	}
}

func TestSaveRecord(t *testing.T) {
	t.Run("AssignsIDAndCreatedAt", func(t *testing.T) {
		s := openTestStore(t)

		record := &core.VerdictRecord{
			OwnerID:    "owner-a",
			Kind:       core.RecordKindWebsite,
			SourceLink: "https://example.com",
			Verdict:    safeVerdict("https://example.com"),
		}
		require.NoError(t, s.SaveRecord(context.Background(), record))
		require.NotEmpty(t, record.ID)
		require.False(t, record.CreatedAt.IsZero())
	})

	t.Run("RejectsMissingOwner", func(t *testing.T) {
		s := openTestStore(t)

		err := s.SaveRecord(context.Background(), &core.VerdictRecord{
			Kind:       core.RecordKindWebsite,
			SourceLink: "https://example.com",
			Verdict:    safeVerdict("https://example.com"),
		})
		require.Error(t, err)
	})

	t.Run("RejectsInvalidKind", func(t *testing.T) {
		s := openTestStore(t)

		err := s.SaveRecord(context.Background(), &core.VerdictRecord{
			OwnerID:    "owner-a",
			Kind:       core.RecordKind("invoice"),
			SourceLink: "https://example.com",
			Verdict:    safeVerdict("https://example.com"),
		})
		require.Error(t, err)
	})
}

func TestListRecords(t *testing.T) {
	t.Run("OwnerIsolation", func(t *testing.T) {
		s := openTestStore(t)

		for _, owner := range []string{"owner-a", "owner-b"} {
			require.NoError(t, s.SaveRecord(context.Background(), &core.VerdictRecord{
				OwnerID:    owner,
				Kind:       core.RecordKindWebsite,
				SourceLink: "https://example.com",
				Verdict:    safeVerdict("https://example.com"),
			}))
		}

		records, err := s.ListRecords(context.Background(), "owner-a", core.RecordKindWebsite, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, "owner-a", records[0].OwnerID)
	})

	t.Run("KindScoping", func(t *testing.T) {
		s := openTestStore(t)

		for _, kind := range []core.RecordKind{core.RecordKindWebsite, core.RecordKindPayment} {
			require.NoError(t, s.SaveRecord(context.Background(), &core.VerdictRecord{
				OwnerID:    "owner-a",
				Kind:       kind,
				SourceLink: "https://example.com",
				Verdict:    safeVerdict("https://example.com"),
			}))
		}

		records, err := s.ListRecords(context.Background(), "owner-a", core.RecordKindPayment, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, core.RecordKindPayment, records[0].Kind)
	})

	t.Run("NewestFirstWithLimit", func(t *testing.T) {
		s := openTestStore(t)

		base := time.Now().UTC().Truncate(time.Second)
		for i := 0; i < 3; i++ {
			require.NoError(t, s.SaveRecord(context.Background(), &core.VerdictRecord{
				OwnerID:    "owner-a",
				Kind:       core.RecordKindWebsite,
				SourceLink: "https://example.com",
				Verdict:    safeVerdict("https://example.com"),
				CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			}))
		}

		records, err := s.ListRecords(context.Background(), "owner-a", core.RecordKindWebsite, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Equal(t, base.Add(2*time.Minute), records[0].CreatedAt)
		require.Equal(t, base.Add(time.Minute), records[1].CreatedAt)
	})

	t.Run("RoundTripsVerdictFields", func(t *testing.T) {
		s := openTestStore(t)

		verdict := core.AnalysisVerdict{
			IsSafe:              false,
			Reasoning:           "Recently registered look-alike domain.",
			TrustScore:          0,
			URL:                 "https://paypa1-secure.example",
			DomainAgeIndication: "This domain appears to be very recently registered.",
		}
		require.NoError(t, s.SaveRecord(context.Background(), &core.VerdictRecord{
			OwnerID:    "owner-a",
			Kind:       core.RecordKindPayment,
			SourceLink: "paypa1-secure.example",
			Verdict:    verdict,
		}))

		records, err := s.ListRecords(context.Background(), "owner-a", core.RecordKindPayment, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, verdict, records[0].Verdict)
		require.Equal(t, "paypa1-secure.example", records[0].SourceLink)
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		s := openTestStore(t)

		records, err := s.ListRecords(context.Background(), "owner-a", core.RecordKindWebsite, 0)
		require.NoError(t, err)
		require.Empty(t, records)
	})
}

package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLink(t *testing.T) {
	t.Run("AddsHTTPSScheme", func(t *testing.T) {
		link, err := NormalizeLink("example.com/checkout")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/checkout", link)
	})

	t.Run("KeepsExplicitScheme", func(t *testing.T) {
		link, err := NormalizeLink("http://shop.example.com")
		require.NoError(t, err)
		require.Equal(t, "http://shop.example.com", link)
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		link, err := NormalizeLink("  https://example.com  ")
		require.NoError(t, err)
		require.Equal(t, "https://example.com", link)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := NormalizeLink("   ")
		require.ErrorIs(t, err, ErrLinkEmpty)
	})

	t.Run("RejectsInteriorWhitespace", func(t *testing.T) {
		_, err := NormalizeLink("not a link")
		require.ErrorIs(t, err, ErrLinkMalformed)
	})

	t.Run("RejectsUnsupportedScheme", func(t *testing.T) {
		_, err := NormalizeLink("ftp://example.com")
		require.ErrorIs(t, err, ErrLinkMalformed)
	})

	t.Run("RejectsHostWithoutDot", func(t *testing.T) {
		_, err := NormalizeLink("https://localhost")
		require.ErrorIs(t, err, ErrLinkMalformed)
	})

	t.Run("RejectsLeadingDotHost", func(t *testing.T) {
		_, err := NormalizeLink("https://.example.com")
		require.ErrorIs(t, err, ErrLinkMalformed)
	})
}

func TestLinkHost(t *testing.T) {
	require.Equal(t, "example.com", LinkHost("https://example.com/path?q=1"))
	require.Equal(t, "pay.example.com", LinkHost("https://pay.example.com"))
}

func TestRecordKind(t *testing.T) {
	require.True(t, RecordKindWebsite.Valid())
	require.True(t, RecordKindPayment.Valid())
	require.False(t, RecordKind("email").Valid())

	require.Equal(t, "link", RecordKindWebsite.FieldName())
	require.Equal(t, "paymentLink", RecordKindPayment.FieldName())
}

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attribution/internal/models"
)

func TestClassifyReferrer(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		want     string
	}{
		{"doubleclick redirect", "https://ad.doubleclick.net/ddm/clk/123", models.SourceGoogleAds},
		{"syndicated search", "https://syndicatedsearch.goog/afs/ads", models.SourceGoogleAds},
		{"gclid uppercase", "HTTPS://SHOP.EXAMPLE.COM/?GCLID=abc", models.SourceGoogleAds},
		{"facebook", "https://m.facebook.com/", models.SourceMeta},
		{"fb app", "android-app://fbapp/", models.SourceMeta},
		{"affiliate", "https://shop.example.com/?_ef_transaction=xyz", models.SourceAffiliate},
		{"localhost", "http://localhost:3000/cart", models.SourceInternal},
		{"loopback", "http://127.0.0.1/", models.SourceInternal},
		{"empty", "", models.SourceDirect},
		{"whitespace", "   ", models.SourceDirect},
		{"no referrer sentinel", "-", models.SourceDirect},
		{"unknown domain", "https://www.bing.com/search?q=cars", models.SourceOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyReferrer(tt.referrer))
		})
	}
}

func TestClassifyReferrer_PriorityOrder(t *testing.T) {
	// Google marker wins over a Facebook marker in the same referrer.
	assert.Equal(t, models.SourceGoogleAds, ClassifyReferrer("https://m.facebook.com/l.php?u=x&gclid=1"))
	// Meta wins over the loopback marker.
	assert.Equal(t, models.SourceMeta, ClassifyReferrer("http://127.0.0.1/?fbclid=9"))
}

func TestClassifyReferrer_TotalOverLabelSet(t *testing.T) {
	labels := map[string]bool{
		models.SourceGoogleAds: true,
		models.SourceMeta:      true,
		models.SourceAffiliate: true,
		models.SourceInternal:  true,
		models.SourceDirect:    true,
		models.SourceOther:     true,
	}

	inputs := []string{"", "-", "x", "DOUBLECLICK", "fb.com", "localhost", "\t", "ftp://weird", "gclid-fbclid", "null"}
	for _, in := range inputs {
		got := ClassifyReferrer(in)
		require.True(t, labels[got], "unexpected label %q for %q", got, in)
		require.Equal(t, got, ClassifyReferrer(in), "classification must be deterministic")
	}
}

func TestSourceRules_Custom(t *testing.T) {
	rules := SourceRules{{Label: "TikTok", Markers: []string{"tiktok"}}}

	assert.Equal(t, "TikTok", rules.Classify("https://www.TikTok.com/"))
	assert.Equal(t, models.SourceOther, rules.Classify("https://ad.doubleclick.net/"))
	assert.Equal(t, models.SourceDirect, rules.Classify(""))
}

func TestIsAttributable(t *testing.T) {
	assert.True(t, IsAttributable(models.SourceGoogleAds))
	assert.True(t, IsAttributable(models.SourceDirect))
	assert.False(t, IsAttributable(models.SourceOther))
	assert.False(t, IsAttributable(models.SourceInternal))
	assert.False(t, IsAttributable(""))
}

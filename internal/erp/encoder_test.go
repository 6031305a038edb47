package erp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCustomerNumber(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"802412", "80241200"},     // 6 digits get the 00 suffix
		{"802412-12", "80241212"},  // separator stripped, already 8 digits
		{"*12345", "00012345"},     // left-padded to 8
		{"123456789", "12345678"},  // truncated to the first 8
		{"80241212", "80241212"},   // idempotent on normalized input
		{"E12B345", "00012345"},    // E stripped, stray letters discarded
		{"CB1234567", "01234567"},  // CB stripped as one unit
		{"", "00000000"},           // empty input still yields a full-width field
		{"C1E2B3", "00000123"},     // letters around the digits are all discarded
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeCustomerNumber(c.raw), "raw=%q", c.raw)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	once := NormalizeCustomerNumber("802412-12")
	assert.Equal(t, once, NormalizeCustomerNumber(once))
}

func TestCompactName(t *testing.T) {
	assert.Equal(t, "BlackFriday2025", CompactName("Black Friday 2025"))
	assert.Equal(t, "midseasonpush", CompactName("mid-season_push"))
	assert.Equal(t, "Été2025!", CompactName("Été 2025!"))
}

func TestEncode(t *testing.T) {
	doc := Document{
		Date:           time.Date(2025, 11, 21, 10, 0, 0, 0, time.UTC),
		CustomerNumber: "802412",
		OrderType:      "W",
		CampaignName:   "Black Friday 2025",
		Lines: []Line{
			{ProductCode: "4711", Quantity: 3},
			{ProductCode: "0815", Quantity: 120},
		},
	}
	want := "I00211125\r\n" +
		"H80241200WBlackFriday2025\r\n" +
		"D47110000000003\r\n" +
		"D08150000000120\r\n"
	assert.Equal(t, want, Encode(doc))
}

func TestEncodeDeferredDelivery(t *testing.T) {
	delivery := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{
		Date:           time.Date(2025, 11, 21, 10, 0, 0, 0, time.UTC),
		DeliveryDate:   &delivery,
		CustomerNumber: "802412-12",
		OrderType:      "V",
		CampaignName:   "Fin d'année",
	}
	got := Encode(doc)
	assert.Contains(t, got, "I00211125011225\r\n")
	assert.Contains(t, got, "H80241212VFind'année\r\n")
}

func TestFilename(t *testing.T) {
	ts := time.Date(2025, 11, 21, 13, 45, 9, 0, time.UTC)
	assert.Equal(t, "WebAction_20251121134509_80241200.txt", Filename(ts, "802412"))
	assert.Equal(t, "commande_BE", Subdir("BE"))
}

func TestWriter(t *testing.T) {
	root := t.TempDir()
	w := &Writer{Root: root}

	ts := time.Date(2025, 11, 21, 13, 45, 9, 0, time.UTC)
	doc := Document{
		Date:           ts,
		CustomerNumber: "802412",
		OrderType:      "V",
		CampaignName:   "Spring Action",
		Lines:          []Line{{ProductCode: "9001", Quantity: 1}},
	}

	path, err := w.Write("LU", doc, ts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "commande_LU", "WebAction_20251121134509_80241200.txt"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Encode(doc), string(b))
}

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lcalzada-xor/nearby/internal/core/domain"
)

func topologySnapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID: "5b0c7a52-0000-4000-8000-000000000001",
		TakenAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Frames:    42,
		Dropped:   3,
		Collections: []domain.Collection{
			{
				SSID:           "Office",
				Protocol:       domain.ProtocolIEEE80211,
				RouterID:       "bb:bb:bb:bb:bb:bb",
				Signal:         -55,
				CurrentChannel: 36,
				Nodes:          []domain.Node{{MAC: "bb:bb:bb:bb:bb:bb"}},
				Links:          []domain.Link{},
			},
			{
				SSID:           "Home",
				Protocol:       domain.ProtocolIEEE80211,
				RouterID:       "00:11:22:33:44:55",
				Label:          "Acme",
				Signal:         -40,
				CurrentChannel: 6,
				Nodes: []domain.Node{
					{MAC: "00:11:22:33:44:55", Properties: domain.Properties{Vendor: "Acme"}},
					{MAC: "aa:bb:cc:00:00:02", Properties: domain.Properties{Vendor: "Apple, Inc.", Signal: -60}},
				},
				Links: []domain.Link{{Source: "aa:bb:cc:00:00:02", Target: "00:11:22:33:44:55"}},
			},
		},
	}
}

func peopleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID:  "5b0c7a52-0000-4000-8000-000000000002",
		PeopleMode: true,
		People: []domain.Person{
			{MAC: "f0:99:bf:00:00:01", Vendor: "Apple, Inc.", Signal: -50, Distance: 3.126963},
			{MAC: "f0:99:bf:00:00:02", Vendor: "Apple, Inc.", Signal: -70, Distance: float32(math.Inf(1))},
		},
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range Formats() {
		e, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.NotNil(t, e)
	}

	e, err := ForFormat("JSON")
	require.NoError(t, err)
	assert.IsType(t, &JSONExporter{}, e)

	_, err = ForFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestJSONExporter_Topology(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONExporter().Encode(&buf, topologySnapshot()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "NetworkCollection", doc["type"])

	coll := doc["collection"].([]any)
	require.Len(t, coll, 2)

	home := coll[0].(map[string]any)
	assert.Equal(t, "Home", home["type"], "sorted by router id")
	assert.Equal(t, "802.11", home["protocol"])
	assert.Equal(t, "", home["version"])
	assert.Equal(t, "00:11:22:33:44:55", home["router_id"])
	assert.Equal(t, "Acme", home["label"])
	assert.Equal(t, float64(-40), home["signal"])
	assert.Equal(t, float64(6), home["current_channel"])

	nodes := home["nodes"].([]any)
	require.Len(t, nodes, 2)
	assert.Equal(t, map[string]any{
		"id":         "aa:bb:cc:00:00:02",
		"properties": map[string]any{"vendor": "Apple, Inc.", "signal": float64(-60)},
	}, nodes[1])
	assert.Equal(t, []any{map[string]any{"source": "aa:bb:cc:00:00:02", "target": "00:11:22:33:44:55"}}, home["links"])

	office := coll[1].(map[string]any)
	assert.Equal(t, []any{}, office["links"])
}

func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONExporter().Encode(&buf, domain.Snapshot{}))
	assert.JSONEq(t, `{"type":"NetworkCollection","collection":[]}`, buf.String())
}

func TestJSONExporter_People(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONExporter().Encode(&buf, peopleSnapshot()))

	var people []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &people))
	require.Len(t, people, 2)
	assert.Equal(t, "f0:99:bf:00:00:01", people[0]["mac"])
	assert.InDelta(t, 3.126963, people[0]["distance"], 1e-5)
	assert.Nil(t, people[1]["distance"], "infinite distance is written as null")
	assert.Contains(t, people[1], "distance")
}

func TestJSONExporter_Stdout(t *testing.T) {
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()

	require.NoError(t, NewJSONExporter().Export(context.Background(), topologySnapshot(), ""))
	assert.Contains(t, buf.String(), `"router_id": "00:11:22:33:44:55"`)
}

func TestPDFExporter(t *testing.T) {
	for name, snap := range map[string]domain.Snapshot{
		"topology": topologySnapshot(),
		"people":   peopleSnapshot(),
		"empty":    {},
	} {
		t.Run(name, func(t *testing.T) {
			data, err := NewPDFExporter().Render(snap)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
		})
	}

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, NewPDFExporter().Export(context.Background(), topologySnapshot(), path))
	assert.FileExists(t, path)
}

func TestSQLiteExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nearby.db")
	e := &SQLiteExporter{}

	require.NoError(t, e.Export(context.Background(), topologySnapshot(), path))
	require.NoError(t, e.Export(context.Background(), peopleSnapshot(), path))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	count := func(model any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(2), count(&SessionModel{}))
	assert.Equal(t, int64(2), count(&AccessPointModel{}))
	assert.Equal(t, int64(3), count(&NodeModel{}))
	assert.Equal(t, int64(1), count(&LinkModel{}))
	assert.Equal(t, int64(2), count(&PersonModel{}))

	var session SessionModel
	require.NoError(t, db.First(&session, "id = ?", topologySnapshot().SessionID).Error)
	assert.Equal(t, uint64(42), session.Frames)

	var far PersonModel
	require.NoError(t, db.First(&far, "mac = ?", "f0:99:bf:00:00:02").Error)
	assert.Nil(t, far.Distance)
}

func TestSQLiteExporter_NeedsPath(t *testing.T) {
	assert.Error(t, NewSQLiteExporter().Export(context.Background(), topologySnapshot(), ""))
}

package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlocklist = `################################
# Feodo Tracker blocklist      #
################################

192.0.2.10
198.51.100.23

203.0.113.7
`

func TestBlocklistFetchSkipsCommentsAndBlankLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleBlocklist))
	}))
	defer srv.Close()

	b := NewBlocklist("Feodo Tracker", srv.URL, 5*time.Second)
	entries, err := b.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, "Active C2 indicator: 192.0.2.10", first.Title)
	assert.Equal(t, srv.URL, first.Link)
	assert.Equal(t, "Feodo Tracker", first.SourceTitle)
	assert.Contains(t, first.Summary, "192.0.2.10")
	// 指标行没有时间信息，交给 processor 盖抓取时间
	assert.Nil(t, first.Published)
}

func TestBlocklistFetchRejectsNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewBlocklist("Feodo Tracker", srv.URL, 5*time.Second)
	_, err := b.Fetch(context.Background())
	require.Error(t, err)
}

func TestBlocklistName(t *testing.T) {
	b := NewBlocklist("Feodo Tracker", "https://example.com/list.txt", 0)
	assert.Equal(t, "blocklist:Feodo Tracker", b.Name())
}

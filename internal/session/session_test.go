package session

import (
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_AddPrepends(t *testing.T) {
	s := New("s", []domain.Sighting{{ID: "old", Location: "HGN"}})

	s.Add(domain.Sighting{ID: "new", Location: "SMN"})

	got := s.Sightings()
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "old", got[1].ID)
	assert.Equal(t, 2, s.Len())
}

func TestSession_SnapshotIsolation(t *testing.T) {
	seed := []domain.Sighting{{ID: "a", Location: "LIB"}}
	s := New("s", seed)

	seed[0].Location = "changed"
	snap := s.Sightings()
	snap[0].Location = "changed"

	assert.Equal(t, "LIB", s.Sightings()[0].Location)
}

func TestSession_DistributionTracksAdds(t *testing.T) {
	s := New("s", nil)
	assert.Equal(t, domain.Distribution{Total: 0, TopCount: 1, Entries: []domain.LocationTally{}}, s.Distribution())

	s.Add(domain.Sighting{ID: "1", Location: "SMN"})
	s.Add(domain.Sighting{ID: "2", Location: "HGN"})
	s.Add(domain.Sighting{ID: "3", Location: "SMN"})

	d := s.Distribution()
	assert.Equal(t, 3, d.Total)
	assert.Equal(t, 2, d.TopCount)
	assert.Equal(t, []domain.LocationTally{{Location: "SMN", Count: 2}, {Location: "HGN", Count: 1}}, d.Entries)
}

func TestSession_ConcurrentAdds(t *testing.T) {
	s := New("s", nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add(domain.Sighting{Location: "CAF"})
			_ = s.Distribution()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	assert.Equal(t, 50, s.Distribution().Entries[0].Count)
}

func TestStore_ResolveCreatesSeededSession(t *testing.T) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	st := NewStore(10, true, metrics)

	s, created := st.Resolve("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, domain.DemoSightings(fake.Now()), s.Sightings())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SessionsActive), 0)

	again, created := st.Resolve(s.ID())
	assert.False(t, created)
	assert.Same(t, s, again)
}

func TestStore_UnseededSessionIsEmpty(t *testing.T) {
	st := NewStore(10, false, observability.NewMetricsForTesting())
	s := st.Create()
	assert.Zero(t, s.Len())
}

func TestStore_UnknownIDStartsFresh(t *testing.T) {
	st := NewStore(10, false, observability.NewMetricsForTesting())

	s, created := st.Resolve("not-a-session")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-session", s.ID())
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	st := NewStore(2, false, metrics)

	a := st.Create()
	b := st.Create()
	_, _ = st.Get(a.ID()) // a is now most recent
	c := st.Create()      // evicts b

	_, ok := st.Get(b.ID())
	assert.False(t, ok)
	_, ok = st.Get(a.ID())
	assert.True(t, ok)
	_, ok = st.Get(c.ID())
	assert.True(t, ok)

	assert.Equal(t, 2, st.Len())
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SessionsActive), 0)
}

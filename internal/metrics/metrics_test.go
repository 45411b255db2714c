package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

func TestMetrics_RecordResolution(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordResolution(KindPayID, 100*time.Millisecond, nil)
	assert.Equal(t, int64(1), m.ResolutionsTotal())
	assert.Equal(t, int64(0), m.ResolutionErrors())
	assert.Equal(t, int64(1), m.payIDResolutions.Load())

	m.RecordResolution(KindFIO, 50*time.Millisecond, payerr.ErrNetworkError)
	assert.Equal(t, int64(2), m.ResolutionsTotal())
	assert.Equal(t, int64(1), m.ResolutionErrors())
	assert.Equal(t, int64(1), m.fioResolutions.Load())

	m.RecordResolution("other", time.Millisecond, nil)
	assert.Equal(t, int64(3), m.ResolutionsTotal())
	assert.Equal(t, int64(1), m.payIDResolutions.Load())
	assert.Equal(t, int64(1), m.fioResolutions.Load())
}

func TestMetrics_RecordRequest(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordRequest(PathURI)
	m.RecordRequest(PathURI)
	m.RecordRequest(PathBare)
	m.RecordRequest(PathResolved)
	m.RecordRequest(PathFailed)
	m.RecordRequest("ignored")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.URIRequests)
	assert.Equal(t, int64(1), snap.BareRequests)
	assert.Equal(t, int64(1), snap.ResolvedRequests)
	assert.Equal(t, int64(1), snap.FailedRequests)
}

func TestMetrics_CacheHitRate(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	assert.InDelta(t, 0.0, m.CacheHitRate(), 0.001)

	// 3 hits, 1 miss = 75%
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()

	assert.InDelta(t, 75.0, m.CacheHitRate(), 0.001)
}

func TestMetrics_ResolutionLatencyAvg(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	assert.InDelta(t, 0.0, m.ResolutionLatencyAvgMs(), 0.001)

	m.RecordResolution(KindPayID, 100*time.Millisecond, nil)
	m.RecordResolution(KindPayID, 200*time.Millisecond, nil)

	assert.InDelta(t, 150.0, m.ResolutionLatencyAvgMs(), 1.0)
}

func TestMetrics_Reset(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	m.RecordResolution(KindFIO, time.Millisecond, nil)
	m.RecordCacheHit()
	m.RecordRequest(PathBare)

	m.Reset()

	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestMetrics_ConcurrentRecording(t *testing.T) {
	t.Parallel()
	m := &Metrics{}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			m.RecordResolution(KindPayID, time.Millisecond, nil)
			m.RecordRequest(PathResolved)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.Equal(t, int64(workers), snap.ResolutionsTotal)
	assert.Equal(t, int64(workers), snap.ResolvedRequests)
}

func TestGlobal(t *testing.T) {
	assert.NotNil(t, Global)
	Global.Reset()
}

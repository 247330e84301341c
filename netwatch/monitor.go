// Package netwatch tracks reachability of the remote store and turns it into
// the two logical signals the queue cares about: became online, became
// offline.
package netwatch

import (
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
)

// Monitor probes a URL on an interval and fans out edge-triggered transitions
// to its subscribers. SetOnline can also be driven directly, e.g. from a
// client heartbeat.
type Monitor struct {
	probeURL string
	interval time.Duration
	client   *http.Client

	mu          sync.Mutex
	online      bool
	subscribers []func(online bool)

	stop chan struct{}
	once sync.Once
}

func NewMonitor(probeURL string, interval time.Duration) *Monitor {
	return &Monitor{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		online:   true,
		stop:     make(chan struct{}),
	}
}

// Subscribe registers a callback invoked on every transition. Callbacks run
// on the monitor goroutine and must return quickly.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Online reports the last observed state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a new state. Subscribers are notified only when the state
// actually changes.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := append([]func(bool)(nil), m.subscribers...)
	m.mu.Unlock()

	if online {
		log.Info("Connectivity restored")
	} else {
		log.Warn("Connectivity lost")
	}
	for _, fn := range subs {
		fn(online)
	}
}

// Start launches the probe loop. Stop ends it.
func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				m.SetOnline(m.probe())
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Monitor) probe() bool {
	req, err := http.NewRequest(http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

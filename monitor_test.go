package ldmonitor

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/go-config-monitor/changetoken"
	"github.com/launchdarkly/go-config-monitor/interfaces"
	"github.com/launchdarkly/go-config-monitor/internal/sharedtest"
	"github.com/launchdarkly/go-config-monitor/ldcache"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/launchdarkly/go-sdk-common/v3/ldlogtest"
	th "github.com/launchdarkly/go-test-helpers/v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monitorTestParams struct {
	monitor *Monitor[*sharedtest.TestSnapshot]
	factory *sharedtest.MockFactory
	sources map[string]*changetoken.Signal
	mockLog *ldlogtest.MockLog
}

func withMonitor(t *testing.T, config Config, sourceNames []string, action func(monitorTestParams)) {
	p := monitorTestParams{
		factory: sharedtest.NewMockFactory(),
		sources: make(map[string]*changetoken.Signal),
		mockLog: ldlogtest.NewMockLog(),
	}
	var sources []interfaces.ChangeTokenSource
	for _, name := range sourceNames {
		s := changetoken.NewSignal(name)
		p.sources[name] = s
		sources = append(sources, s)
	}
	config.Loggers = p.mockLog.Loggers
	m, err := NewCustomMonitor[*sharedtest.TestSnapshot](p.factory, sources,
		ldcache.NewMemoryCache[*sharedtest.TestSnapshot](), config)
	require.NoError(t, err)
	defer m.Close()
	defer p.mockLog.DumpIfTestFailed(t)
	p.monitor = m
	action(p)
}

func TestNewMonitorValidatesArguments(t *testing.T) {
	factory := sharedtest.NewMockFactory()
	cache := ldcache.NewMemoryCache[*sharedtest.TestSnapshot]()

	t.Run("nil factory", func(t *testing.T) {
		_, err := NewMonitor[*sharedtest.TestSnapshot](nil, nil, cache)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	})

	t.Run("nil cache", func(t *testing.T) {
		_, err := NewMonitor[*sharedtest.TestSnapshot](factory, nil, nil)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	})

	t.Run("nil source", func(t *testing.T) {
		_, err := NewMonitor[*sharedtest.TestSnapshot](factory, []interfaces.ChangeTokenSource{nil}, cache)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	})

	t.Run("no sources", func(t *testing.T) {
		m, err := NewMonitor[*sharedtest.TestSnapshot](factory, nil, cache)
		require.NoError(t, err)
		assert.NoError(t, m.Close())
	})
}

func TestGet(t *testing.T) {
	t.Run("builds on first use and then caches", func(t *testing.T) {
		withMonitor(t, Config{}, nil, func(p monitorTestParams) {
			first, err := p.monitor.Get("db")
			require.NoError(t, err)
			second, err := p.monitor.Get("db")
			require.NoError(t, err)

			assert.Same(t, first, second)
			assert.Equal(t, "db", first.Name)
			assert.Equal(t, 1, p.factory.Calls("db"))
		})
	})

	t.Run("concurrent calls observe one instance", func(t *testing.T) {
		withMonitor(t, Config{}, nil, func(p monitorTestParams) {
			results := make(chan *sharedtest.TestSnapshot, 50)
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					s, err := p.monitor.Get("db")
					assert.NoError(t, err)
					results <- s
				}()
			}
			wg.Wait()
			close(results)

			first := <-results
			for s := range results {
				assert.Same(t, first, s)
			}
			assert.Equal(t, 1, p.factory.Calls("db"))
		})
	})

	t.Run("default name", func(t *testing.T) {
		withMonitor(t, Config{}, nil, func(p monitorTestParams) {
			a, _ := p.monitor.Get("")
			b, _ := p.monitor.Get(DefaultName)
			c, _ := p.monitor.CurrentValue()

			assert.Same(t, a, b)
			assert.Same(t, a, c)
			assert.Equal(t, 1, p.factory.Calls(DefaultName))
		})
	})

	t.Run("factory error is returned and not cached", func(t *testing.T) {
		withMonitor(t, Config{}, nil, func(p monitorTestParams) {
			fakeError := errors.New("sorry")
			p.factory.SetError(fakeError)
			_, err := p.monitor.Get("db")
			assert.Equal(t, fakeError, err)

			p.factory.SetError(nil)
			s, err := p.monitor.Get("db")
			require.NoError(t, err)
			assert.NotNil(t, s)
			assert.Equal(t, 2, p.factory.Calls("db"))
		})
	})
}

func TestChangeNotification(t *testing.T) {
	t.Run("change rebuilds eagerly", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			before, _ := p.monitor.Get("db")

			p.sources["db"].Notify()
			assert.Equal(t, 2, p.factory.Calls("db"))

			after, _ := p.monitor.Get("db")
			assert.NotSame(t, before, after)
			assert.Equal(t, 2, p.factory.Calls("db"))
		})
	})

	t.Run("every firing is handled", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			for i := 0; i < 3; i++ {
				p.sources["db"].Notify()
			}
			assert.Equal(t, 3, p.factory.Calls("db"))
		})
	})

	t.Run("other names are not affected", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			other, _ := p.monitor.Get("cache")
			p.sources["db"].Notify()
			again, _ := p.monitor.Get("cache")
			assert.Same(t, other, again)
		})
	})

	t.Run("source with empty name targets the default configuration", func(t *testing.T) {
		withMonitor(t, Config{}, []string{""}, func(p monitorTestParams) {
			var names []string
			p.monitor.OnChange(func(_ *sharedtest.TestSnapshot, name string) { names = append(names, name) })
			before, _ := p.monitor.CurrentValue()

			p.sources[""].Notify()

			after, _ := p.monitor.CurrentValue()
			assert.NotSame(t, before, after)
			assert.Equal(t, []string{DefaultName}, names)
		})
	})

	t.Run("listeners are called in order with the new snapshot", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			type call struct {
				listener string
				value    *sharedtest.TestSnapshot
				name     string
			}
			var calls []call
			for _, id := range []string{"L1", "L2", "L3"} {
				id := id
				p.monitor.OnChange(func(value *sharedtest.TestSnapshot, name string) {
					calls = append(calls, call{id, value, name})
				})
			}

			p.sources["db"].Notify()

			current, _ := p.monitor.Get("db")
			require.Len(t, calls, 3)
			for i, id := range []string{"L1", "L2", "L3"} {
				assert.Equal(t, id, calls[i].listener)
				assert.Same(t, current, calls[i].value)
				assert.Equal(t, "db", calls[i].name)
			}
		})
	})

	t.Run("closing one registration leaves the others", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			var calls []string
			record := func(id string) func(*sharedtest.TestSnapshot, string) {
				return func(*sharedtest.TestSnapshot, string) { calls = append(calls, id) }
			}
			p.monitor.OnChange(record("L1"))
			reg2 := p.monitor.OnChange(record("L2"))
			p.monitor.OnChange(record("L3"))

			reg2.Close()
			p.sources["db"].Notify()

			assert.Equal(t, []string{"L1", "L3"}, calls)
		})
	})

	t.Run("same function registered twice is removed once", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			count := 0
			listener := func(*sharedtest.TestSnapshot, string) { count++ }
			reg1 := p.monitor.OnChange(listener)
			p.monitor.OnChange(listener)

			reg1.Close()
			p.sources["db"].Notify()

			assert.Equal(t, 1, count)
		})
	})

	t.Run("channel listener receives change events", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			ch := p.monitor.AddChangeListener()
			defer p.monitor.RemoveChangeListener(ch)

			p.sources["db"].Notify()

			event := th.RequireValue(t, ch, time.Second)
			current, _ := p.monitor.Get("db")
			assert.Equal(t, "db", event.Name)
			assert.Same(t, current, event.Value)
			th.AssertNoMoreValues(t, ch, 50*time.Millisecond)
		})
	})

	t.Run("removed channel listener is closed", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			ch := p.monitor.AddChangeListener()
			p.monitor.RemoveChangeListener(ch)
			th.AssertChannelClosed(t, ch, time.Millisecond)
		})
	})

	t.Run("rebuild error is logged and listeners are not called", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			called := false
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { called = true })
			p.factory.SetError(errors.New("bad config"))

			p.sources["db"].Notify()

			assert.False(t, called)
			p.mockLog.AssertMessageMatch(t, true, ldlog.Error, `Unable to rebuild configuration "db".*bad config`)

			p.factory.SetError(nil)
			s, err := p.monitor.Get("db")
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	})
}

func TestListenerPanics(t *testing.T) {
	t.Run("panic stops delivery by default", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			var calls []string
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { calls = append(calls, "L1") })
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { panic("L2 failed") })
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { calls = append(calls, "L3") })

			assert.Panics(t, p.sources["db"].Notify)
			assert.Equal(t, []string{"L1"}, calls)

			// the subscription survives the panic
			assert.Panics(t, p.sources["db"].Notify)
			assert.Equal(t, []string{"L1", "L1"}, calls)
		})
	})

	t.Run("panic is isolated if configured", func(t *testing.T) {
		withMonitor(t, Config{IsolateListenerPanics: true}, []string{"db"}, func(p monitorTestParams) {
			var calls []string
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { calls = append(calls, "L1") })
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { panic("L2 failed") })
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { calls = append(calls, "L3") })

			assert.NotPanics(t, p.sources["db"].Notify)
			assert.Equal(t, []string{"L1", "L3"}, calls)
			p.mockLog.AssertMessageMatch(t, true, ldlog.Error, "panicked: L2 failed")
		})
	})

	t.Run("factory panic propagates to the firing goroutine", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			p.factory.Panic = "factory failed"
			assert.Panics(t, p.sources["db"].Notify)
		})
	})
}

func TestClose(t *testing.T) {
	t.Run("changes after close are ignored", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			called := false
			p.monitor.OnChange(func(*sharedtest.TestSnapshot, string) { called = true })
			before, _ := p.monitor.Get("db")

			require.NoError(t, p.monitor.Close())
			p.sources["db"].Notify()

			assert.False(t, called)
			assert.Equal(t, 1, p.factory.Calls("db"))
			after, err := p.monitor.Get("db")
			require.NoError(t, err)
			assert.Same(t, before, after)
		})
	})

	t.Run("get still builds after close", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			require.NoError(t, p.monitor.Close())
			s, err := p.monitor.Get("other")
			require.NoError(t, err)
			assert.Equal(t, "other", s.Name)
		})
	})

	t.Run("close twice", func(t *testing.T) {
		withMonitor(t, Config{}, []string{"db"}, func(p monitorTestParams) {
			assert.NoError(t, p.monitor.Close())
			assert.NoError(t, p.monitor.Close())
		})
	})
}

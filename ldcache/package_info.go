// Package ldcache provides implementations of interfaces.Cache for the configuration monitor.
//
// Every implementation stores a lazily built entry per name. The entry is inserted atomically, and
// the snapshot is built outside of any lock, so concurrent misses on one name share a single build
// while builds for different names proceed independently. A build that fails is discarded, so the
// next access tries again.
//
//   - NewMemoryCache keeps entries until they are removed. This is what the monitor normally uses.
//   - NewBoundedCache keeps at most a given number of entries, evicting the least recently used.
//   - NewExpiringCache drops entries after a fixed time.
package ldcache

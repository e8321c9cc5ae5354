// Package stats provides the lightweight atomic counters the memory
// manager and mailbox use to report activity, in the same Counter_t
// idiom as other kernel-style statistics packages, but built on
// portable sync/atomic rather than a runtime cycle counter.
package stats

import (
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
)

// Enabled gates whether counters actually accumulate. Tests flip it on
// to make assertions about activity; production code can leave it off
// to avoid the atomic-add overhead on a hot path.
var Enabled = true

// Counter_t is a statistical counter, safe for concurrent Inc.
type Counter_t struct {
	n int64
}

// Inc increments the counter by one.
func (c *Counter_t) Inc() {
	if Enabled {
		atomic.AddInt64(&c.n, 1)
	}
}

// Add increments the counter by d.
func (c *Counter_t) Add(d int64) {
	if Enabled {
		atomic.AddInt64(&c.n, d)
	}
}

// Get returns the counter's current value.
func (c *Counter_t) Get() int64 {
	return atomic.LoadInt64(&c.n)
}

// Stats2String renders every Counter_t field of st as a printable
// string via a reflection-based dump.
func Stats2String(st interface{}) string {
	v := reflect.ValueOf(st)
	s := ""
	for i := 0; i < v.NumField(); i++ {
		t := v.Field(i).Type().String()
		if strings.HasSuffix(t, "Counter_t") {
			n := v.Field(i).Interface().(Counter_t)
			s += "\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(n.Get(), 10)
		}
	}
	return s + "\n"
}

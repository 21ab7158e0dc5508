package neotest

import (
	"context"
	"sync"
	"time"

	"collectd.org/api"
	"github.com/signalfx/docker-stats-agent/internal/monitors/types"
)

// TestOutput can be used in place of the normal collector output to provide a
// simpler way of testing collector output.
type TestOutput struct {
	vlChan chan *api.ValueList

	lock sync.Mutex
	// Errors to return from SendValueList, keyed by type instance
	failures map[string]error
}

var _ types.Output = &TestOutput{}

// NewTestOutput creates a new initialized TestOutput instance
func NewTestOutput() *TestOutput {
	return &TestOutput{
		vlChan:   make(chan *api.ValueList, 1000),
		failures: map[string]error{},
	}
}

// FailFor makes every value list with the given type instance get rejected
// with err.
func (to *TestOutput) FailFor(typeInstance string, err error) {
	to.lock.Lock()
	defer to.lock.Unlock()
	to.failures[typeInstance] = err
}

// SendValueList accepts a value list and sticks it in a buffered queue
func (to *TestOutput) SendValueList(ctx context.Context, vl *api.ValueList) error {
	to.lock.Lock()
	err := to.failures[vl.TypeInstance]
	to.lock.Unlock()
	if err != nil {
		return err
	}

	to.vlChan <- vl
	return nil
}

// FlushValueLists returns all of the value lists injected into the channel
// so far.
func (to *TestOutput) FlushValueLists() []*api.ValueList {
	var out []*api.ValueList
	for {
		select {
		case vl := <-to.vlChan:
			out = append(out, vl)
		default:
			return out
		}
	}
}

// WaitForValueLists will keep pulling value lists off of the internal queue
// until it either gets the expected count or waitSeconds seconds have
// elapsed.  It will never return more than 'count' value lists.
func (to *TestOutput) WaitForValueLists(count, waitSeconds int) []*api.ValueList {
	var vls []*api.ValueList
	timeout := time.After(time.Duration(waitSeconds) * time.Second)

loop:
	for {
		select {
		case vl := <-to.vlChan:
			vls = append(vls, vl)
			if len(vls) >= count {
				break loop
			}
		case <-timeout:
			break loop
		}
	}

	return vls
}

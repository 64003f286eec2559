package results

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dynoquery/models"
	"dynoquery/query"
	"dynoquery/utils/logger"
)

// State is the pagination state of an Accumulator
type State int

const (
	Idle State = iota
	FetchingFirstPage
	HasData
	FetchingNextPage
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingFirstPage:
		return "fetching_first_page"
	case HasData:
		return "has_data"
	case FetchingNextPage:
		return "fetching_next_page"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNoResults is returned when paging forward before any query was submitted
var ErrNoResults = errors.New("no results to page through")

// Executor runs one remote page request
type Executor interface {
	Execute(ctx context.Context, tableName string, wire *query.WireParams) (*models.RemotePage, error)
}

// Accumulator drives multi-page retrieval of one query and retains every visited page.
// Remote calls run without holding the lock; a result is applied only when no Submit or
// Reset happened while it was in flight.
type Accumulator struct {
	mu sync.Mutex

	exec     Executor
	table    string
	meta     *models.TableMetadata
	pageSize int32
	logger   logger.Logger

	state      State
	params     *models.QueryParameters
	pages      []*Page
	index      int
	cursor     models.Cursor
	exhausted  bool
	generation uint64
}

func NewAccumulator(exec Executor, meta *models.TableMetadata, pageSize int32, log logger.Logger) *Accumulator {
	table := ""
	if meta != nil {
		table = meta.TableName
	}
	return &Accumulator{
		exec:     exec,
		table:    table,
		meta:     meta,
		pageSize: pageSize,
		logger:   log,
		index:    -1,
	}
}

// Submit starts a new query and fetches its first page. A newer Submit or Reset while
// the fetch is in flight, or cancelling ctx, makes this call return ErrSuperseded without
// applying the page.
func (a *Accumulator) Submit(ctx context.Context, params *models.QueryParameters) (*Page, error) {
	first := query.Clone(params)
	wire, err := query.ToWireParams(first, a.pageSize)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.state = FetchingFirstPage
	a.generation++
	gen, table := a.generation, a.table
	a.mu.Unlock()

	a.logger.Debugf("Fetching first page of %s (scan=%t)", table, first.ScanMode)
	remote, err := a.exec.Execute(ctx, table, wire)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stale(ctx, gen) {
		return nil, models.ErrSuperseded
	}
	if err != nil {
		a.state = a.settled()
		a.logger.Errorf("First page of %s failed: %v", a.table, err)
		return nil, err
	}

	page := BuildPage(a.meta, remote.Items)
	a.params = first
	a.pages = []*Page{page}
	a.index = 0
	a.cursor = remote.NextCursor
	a.exhausted = len(remote.NextCursor) == 0
	a.state = HasData
	return page, nil
}

// NextPage moves forward one page. Pages already fetched are served from memory; once
// the remote side is exhausted the current page is returned unchanged.
func (a *Accumulator) NextPage(ctx context.Context) (*Page, error) {
	a.mu.Lock()
	if a.state != HasData && a.state != FetchingNextPage {
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: accumulator is %s", ErrNoResults, a.state)
	}
	if a.index < len(a.pages)-1 {
		a.index++
		page := a.pages[a.index]
		a.mu.Unlock()
		return page, nil
	}
	if a.exhausted {
		page := a.pages[a.index]
		a.mu.Unlock()
		return page, nil
	}

	next := query.Clone(a.params)
	next.PaginationCursor = a.cursor
	pageNum := len(a.pages) + 1
	a.state = FetchingNextPage
	a.generation++
	gen, table := a.generation, a.table
	a.mu.Unlock()

	wire, err := query.ToWireParams(next, a.pageSize)
	if err == nil {
		a.logger.Debugf("Fetching page %d of %s", pageNum, table)
		var remote *models.RemotePage
		remote, err = a.exec.Execute(ctx, table, wire)
		if err == nil {
			return a.applyNext(ctx, gen, remote)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stale(ctx, gen) {
		return nil, models.ErrSuperseded
	}
	a.state = a.settled()
	a.logger.Errorf("Next page of %s failed: %v", a.table, err)
	return nil, err
}

func (a *Accumulator) applyNext(ctx context.Context, gen uint64, remote *models.RemotePage) (*Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stale(ctx, gen) {
		return nil, models.ErrSuperseded
	}
	page := BuildPage(a.meta, remote.Items)
	a.pages = append(a.pages, page)
	a.index = len(a.pages) - 1
	a.cursor = remote.NextCursor
	a.exhausted = len(remote.NextCursor) == 0
	a.state = HasData
	return page, nil
}

// stale reports whether a fetch started at gen must be dropped. A fetch whose context was
// cancelled while its generation is still current gives the state back. Callers hold a.mu.
func (a *Accumulator) stale(ctx context.Context, gen uint64) bool {
	if gen != a.generation {
		return true
	}
	if ctx.Err() != nil {
		a.state = a.settled()
		a.logger.Debugf("Dropping cancelled fetch of %s", a.table)
		return true
	}
	return false
}

// settled is the state to fall back to after a failed fetch
func (a *Accumulator) settled() State {
	if len(a.pages) > 0 {
		return HasData
	}
	return Idle
}

// PreviousPage moves back one page without a remote call. It reports false when already
// on the first page.
func (a *Accumulator) PreviousPage() (*Page, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index <= 0 {
		return a.current(), false
	}
	a.index--
	return a.pages[a.index], true
}

// Reset discards every retained page and supersedes any fetch in flight
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.state = Idle
	a.params = nil
	a.pages = nil
	a.index = -1
	a.cursor = nil
	a.exhausted = false
}

// SetTable points the accumulator at another table and resets it
func (a *Accumulator) SetTable(meta *models.TableMetadata) {
	a.Reset()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.meta = meta
	a.table = ""
	if meta != nil {
		a.table = meta.TableName
	}
}

// Current returns the page under the pointer, or nil when idle
func (a *Accumulator) Current() *Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current()
}

func (a *Accumulator) current() *Page {
	if a.index < 0 || a.index >= len(a.pages) {
		return nil
	}
	return a.pages[a.index]
}

// Pages returns every retained page in fetch order
func (a *Accumulator) Pages() []*Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Page, len(a.pages))
	copy(out, a.pages)
	return out
}

// PageIndex returns the zero-based page pointer, -1 when idle
func (a *Accumulator) PageIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index
}

// Exhausted reports whether the remote side returned no continuation cursor
func (a *Accumulator) Exhausted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exhausted
}

func (a *Accumulator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Params returns a copy of the query being paged, or nil when idle
func (a *Accumulator) Params() *models.QueryParameters {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.params == nil {
		return nil
	}
	return query.Clone(a.params)
}

// Generation identifies the latest request; it changes on every Submit, fetch and Reset
func (a *Accumulator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

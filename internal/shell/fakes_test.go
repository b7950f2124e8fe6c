package shell

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sdfpt05/jobsh/internal/spawn"
	"github.com/sdfpt05/jobsh/internal/sys"
)

const testShellPGID = 500

type launchCall struct {
	pid    int
	pgid   int
	name   string
	args   []string
	stdin  *os.File
	stdout *os.File
}

type fakeLauncher struct {
	mu       sync.Mutex
	nextPID  int
	calls    []launchCall
	resumed  []int
	failOn   map[string]error
	onLaunch func(pid int)
}

func (l *fakeLauncher) Launch(
	pgid int,
	name string,
	args []string,
	stdin, stdout *os.File,
) (int, error) {
	l.mu.Lock()

	if err, ok := l.failOn[name]; ok {
		l.mu.Unlock()
		return 0, &spawn.Error{Name: name, Err: err}
	}

	if l.nextPID == 0 {
		l.nextPID = 1000
	}
	l.nextPID++
	pid := l.nextPID

	group := pgid
	if group == spawn.NewGroup {
		group = pid
	}

	l.calls = append(l.calls, launchCall{
		pid:    pid,
		pgid:   group,
		name:   name,
		args:   args,
		stdin:  stdin,
		stdout: stdout,
	})

	onLaunch := l.onLaunch
	l.mu.Unlock()

	if onLaunch != nil {
		onLaunch(pid)
	}

	return pid, nil
}

func (l *fakeLauncher) Resume(pgid int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.resumed = append(l.resumed, pgid)

	return nil
}

func (l *fakeLauncher) launched() []launchCall {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]launchCall{}, l.calls...)
}

type fakeTerminal struct {
	mu    sync.Mutex
	calls []int
}

func (f *fakeTerminal) SetForeground(pgid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, pgid)

	return nil
}

func (f *fakeTerminal) history() []int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]int{}, f.calls...)
}

func (f *fakeTerminal) last() int {
	calls := f.history()
	if len(calls) == 0 {
		return 0
	}

	return calls[len(calls)-1]
}

// fakeWaiter reports queued statuses and then NoChange.
type fakeWaiter struct {
	mu       sync.Mutex
	statuses []sys.Status
	err      error
}

func (f *fakeWaiter) push(statuses ...sys.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statuses = append(f.statuses, statuses...)
}

func (f *fakeWaiter) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
}

func (f *fakeWaiter) Wait() (sys.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return sys.Status{}, f.err
	}

	if len(f.statuses) == 0 {
		return sys.Status{Kind: sys.NoChange}, nil
	}

	s := f.statuses[0]
	f.statuses = f.statuses[1:]

	return s, nil
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader on different
// goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

type testWorker struct {
	*Worker

	launcher *fakeLauncher
	terminal *fakeTerminal
	waiter   *fakeWaiter
	stderr   *syncBuffer
	ctx      context.Context
}

// newTestWorker returns a Worker with fake collaborators and a buffered reply
// channel, so its methods can be called directly from the test goroutine.
func newTestWorker(t *testing.T, opts ...func(*WorkerConfig)) *testWorker {
	t.Helper()

	tw := &testWorker{
		launcher: &fakeLauncher{},
		terminal: &fakeTerminal{},
		waiter:   &fakeWaiter{},
		stderr:   &syncBuffer{},
		ctx:      context.Background(),
	}

	cfg := WorkerConfig{
		Launcher:  tw.launcher,
		Terminal:  tw.terminal,
		Waiter:    tw.waiter,
		ShellPGID: testShellPGID,
		Stderr:    tw.stderr,
		Logger:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	tw.Worker = NewWorker(cfg)
	tw.replies = make(chan Reply, 8)

	return tw
}

func (tw *testWorker) submitLine(t *testing.T, line string) {
	t.Helper()

	tw.submit(tw.ctx, line)
	tw.check(t)
}

func (tw *testWorker) report(t *testing.T, statuses ...sys.Status) {
	t.Helper()

	tw.waiter.push(statuses...)

	if err := tw.reap(tw.ctx); err != nil {
		t.Fatalf("expected not to receive error: got '%v'", err)
	}

	tw.check(t)
}

func (tw *testWorker) check(t *testing.T) {
	t.Helper()

	if err := tw.table.Check(); err != nil {
		t.Fatalf("expected consistent table: got '%v'", err)
	}
}

func (tw *testWorker) expectReply(t *testing.T, want Reply) {
	t.Helper()

	select {
	case got := <-tw.replies:
		if got != want {
			t.Errorf("expected reply: got '%+v', want '%+v'", got, want)
		}
	default:
		t.Errorf("expected reply '%+v': got none", want)
	}
}

func (tw *testWorker) expectNoReply(t *testing.T) {
	t.Helper()

	select {
	case got := <-tw.replies:
		t.Errorf("expected no reply: got '%+v'", got)
	default:
	}
}

func exited(pid, code int) sys.Status {
	return sys.Status{Pid: pid, Kind: sys.Exited, Code: code}
}

func stopped(pid int) sys.Status {
	return sys.Status{Pid: pid, Kind: sys.Stopped}
}

func continued(pid int) sys.Status {
	return sys.Status{Pid: pid, Kind: sys.Continued}
}

func receive[T any](t *testing.T, ch <-chan T, timeout time.Duration) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(timeout):
		var zero T
		t.Fatalf("timed out after %s", timeout)
		return zero
	}
}

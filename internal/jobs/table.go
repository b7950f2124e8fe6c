package jobs

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Job is one launched pipeline.
type Job struct {
	ID   int
	PGID int
	Line string
}

// Process is one tracked child process.
type Process struct {
	PID   int
	PGID  int
	State State
}

type group struct {
	jobID   int
	members map[int]struct{}
}

// Removal describes the effect of Table.RemoveProcess.
type Removal struct {
	PGID int

	// Job is the job owning the process' group. It is valid even when the
	// job was removed along with its last process.
	Job Job

	// JobRemoved is true when the process was the last member of its group.
	JobRemoved bool
}

// Table indexes jobs, process groups and processes.
type Table struct {
	jobs   map[int]*Job
	groups map[int]*group
	procs  map[int]*Process

	// fg is the foreground process group or 0 when the shell itself holds
	// the terminal.
	fg int

	limit int
}

// NewTable returns an empty Table that hands out job ids in [0, limit). A
// limit of zero or less means no limit.
func NewTable(limit int) *Table {
	if limit <= 0 {
		limit = math.MaxInt
	}

	return &Table{
		jobs:   make(map[int]*Job),
		groups: make(map[int]*group),
		procs:  make(map[int]*Process),
		limit:  limit,
	}
}

// NextID returns the smallest job id not in use, or false when every id
// below the limit is taken.
func (t *Table) NextID() (int, bool) {
	for id := 0; id < t.limit; id++ {
		if _, used := t.jobs[id]; !used {
			return id, true
		}
	}

	return 0, false
}

// Add records a job, its process group and its member processes in one
// step. The group id is the pid of the first process.
func (t *Table) Add(id int, line string, pids []int) (Job, error) {
	if len(pids) == 0 {
		return Job{}, ErrNoProcesses
	}

	if _, exists := t.jobs[id]; exists {
		return Job{}, fmt.Errorf("add job %d: %w", id, ErrJobExists)
	}

	pgid := pids[0]
	if _, exists := t.groups[pgid]; exists {
		return Job{}, fmt.Errorf("add job %d: %w", id, ErrGroupExists)
	}

	for _, pid := range pids {
		if _, exists := t.procs[pid]; exists {
			return Job{}, fmt.Errorf("add job %d: process %d already tracked", id, pid)
		}
	}

	g := &group{jobID: id, members: make(map[int]struct{}, len(pids))}
	for _, pid := range pids {
		g.members[pid] = struct{}{}
		t.procs[pid] = &Process{PID: pid, PGID: pgid, State: Running}
	}

	t.groups[pgid] = g

	job := &Job{ID: id, PGID: pgid, Line: line}
	t.jobs[id] = job

	return *job, nil
}

// Job returns the job with the given id.
func (t *Table) Job(id int) (Job, bool) {
	job, ok := t.jobs[id]
	if !ok {
		return Job{}, false
	}

	return *job, true
}

// GroupJob returns the job owning the process group pgid.
func (t *Table) GroupJob(pgid int) (Job, bool) {
	g, ok := t.groups[pgid]
	if !ok {
		return Job{}, false
	}

	return t.Job(g.jobID)
}

// Process returns the tracked process pid.
func (t *Table) Process(pid int) (Process, bool) {
	p, ok := t.procs[pid]
	if !ok {
		return Process{}, false
	}

	return *p, true
}

// Members returns the pids of the process group pgid in ascending order.
func (t *Table) Members(pgid int) []int {
	g, ok := t.groups[pgid]
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(g.members))
}

// SetState records the run state of process pid. It returns false if pid is
// not tracked.
func (t *Table) SetState(pid int, s State) bool {
	p, ok := t.procs[pid]
	if !ok {
		return false
	}

	p.State = s

	return true
}

// GroupStopped reports whether pgid is tracked and every member is stopped.
func (t *Table) GroupStopped(pgid int) bool {
	g, ok := t.groups[pgid]
	if !ok || len(g.members) == 0 {
		return false
	}

	for pid := range g.members {
		if t.procs[pid].State != Stopped {
			return false
		}
	}

	return true
}

// RemoveProcess forgets process pid and drops it from its group. When the
// group becomes empty the group and its job are removed too. It returns
// false if pid is not tracked, so a process is removed at most once.
func (t *Table) RemoveProcess(pid int) (Removal, bool) {
	p, ok := t.procs[pid]
	if !ok {
		return Removal{}, false
	}

	delete(t.procs, pid)

	r := Removal{PGID: p.PGID}

	g := t.groups[p.PGID]
	delete(g.members, pid)

	r.Job = *t.jobs[g.jobID]

	if len(g.members) == 0 {
		delete(t.groups, p.PGID)
		delete(t.jobs, g.jobID)
		r.JobRemoved = true
	}

	return r, true
}

// Foreground returns the foreground process group, or false when the shell
// holds the terminal.
func (t *Table) Foreground() (int, bool) {
	return t.fg, t.fg != 0
}

// SetForeground marks pgid as the foreground process group.
func (t *Table) SetForeground(pgid int) error {
	if _, ok := t.groups[pgid]; !ok {
		return fmt.Errorf("set foreground %d: %w", pgid, ErrGroupNotFound)
	}

	t.fg = pgid

	return nil
}

// ClearForeground records that the shell holds the terminal.
func (t *Table) ClearForeground() {
	t.fg = 0
}

// Len returns the number of tracked jobs.
func (t *Table) Len() int {
	return len(t.jobs)
}

// Jobs returns all tracked jobs ordered by id.
func (t *Table) Jobs() []Job {
	jobs := make([]Job, 0, len(t.jobs))
	for _, id := range slices.Sorted(maps.Keys(t.jobs)) {
		jobs = append(jobs, *t.jobs[id])
	}

	return jobs
}

// Check verifies that the indexes agree with each other.
func (t *Table) Check() error {
	for pid, p := range t.procs {
		if p.PID != pid {
			return inconsistent("process %d recorded as %d", pid, p.PID)
		}

		g, ok := t.groups[p.PGID]
		if !ok {
			return inconsistent("process %d references missing group %d", pid, p.PGID)
		}

		if _, member := g.members[pid]; !member {
			return inconsistent("process %d missing from group %d", pid, p.PGID)
		}
	}

	for pgid, g := range t.groups {
		if len(g.members) == 0 {
			return inconsistent("group %d is empty", pgid)
		}

		for pid := range g.members {
			p, ok := t.procs[pid]
			if !ok {
				return inconsistent("group %d references missing process %d", pgid, pid)
			}

			if p.PGID != pgid {
				return inconsistent("process %d in group %d records group %d", pid, pgid, p.PGID)
			}
		}

		job, ok := t.jobs[g.jobID]
		if !ok {
			return inconsistent("group %d references missing job %d", pgid, g.jobID)
		}

		if job.PGID != pgid {
			return inconsistent("job %d owns group %d, not %d", job.ID, job.PGID, pgid)
		}
	}

	for id, job := range t.jobs {
		if job.ID != id {
			return inconsistent("job %d recorded as %d", id, job.ID)
		}

		if _, ok := t.groups[job.PGID]; !ok {
			return inconsistent("job %d references missing group %d", id, job.PGID)
		}
	}

	if t.fg != 0 {
		if _, ok := t.groups[t.fg]; !ok {
			return inconsistent("foreground group %d is not tracked", t.fg)
		}
	}

	return nil
}

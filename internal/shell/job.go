package shell

import (
	"fmt"
	"os"

	"github.com/sdfpt05/jobsh/internal/parser"
	"github.com/sdfpt05/jobsh/internal/spawn"
)

// spawnPipeline launches stages as a new foreground job.
func (w *Worker) spawnPipeline(line string, stages []parser.Stage) error {
	id, ok := w.table.NextID()
	if !ok {
		return ErrNoFreeJobID
	}

	pids, err := w.launch(stages)
	if err != nil {
		return err
	}

	job, err := w.table.Add(id, line, pids)
	if err != nil {
		return fmt.Errorf("record job: %w", err)
	}

	w.logger.Debug("job started", "job", job.ID, "pgid", job.PGID, "pids", pids)

	w.foreground(job.PGID)

	return nil
}

// launch starts one or two stages in a single new process group and returns
// their pids, the group leader first.
func (w *Worker) launch(stages []parser.Stage) ([]int, error) {
	first := stages[0]

	if len(stages) == 1 {
		pid, err := w.launcher.Launch(spawn.NewGroup, first.Name, first.Args, nil, nil)
		if err != nil {
			return nil, err
		}

		return []int{pid}, nil
	}

	second := stages[1]

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create pipe: %w", err)
	}

	// The children hold their own copies of both ends.
	defer pr.Close()
	defer pw.Close()

	leader, err := w.launcher.Launch(spawn.NewGroup, first.Name, first.Args, nil, pw)
	if err != nil {
		return nil, err
	}

	pid, err := w.launcher.Launch(leader, second.Name, second.Args, pr, nil)
	if err != nil {
		w.logger.Debug("first stage left without a job", "pid", leader)
		return nil, err
	}

	return []int{leader, pid}, nil
}

package probe

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// Processes enumerates every visible process. Processes that exit while
// being read are skipped; fields the caller may not read (IO counters of
// other users' processes, for example) are left None.
func (s *System) Processes(ctx context.Context) ([]metrics.ProcessSample, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Listing processes failed")
	}

	out := make([]metrics.ProcessSample, 0, len(procs))
	live := make(map[procKey]struct{}, len(procs))
	for _, p := range procs {
		if p == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "Listing processes was cancelled")
		}
		sample, ok := s.readProcess(ctx, p)
		if !ok {
			continue
		}
		live[procKey{pid: sample.PID, created: sample.CreateTime}] = struct{}{}
		out = append(out, sample)
	}
	s.users.retain(live)
	return out, nil
}

func (s *System) readProcess(ctx context.Context, p *process.Process) (metrics.ProcessSample, bool) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		// Gone, or a kernel task we cannot inspect.
		return metrics.ProcessSample{}, false
	}

	sample := metrics.ProcessSample{
		PID:   p.Pid,
		Name:  name,
		State: metrics.ProcUnknown,
	}

	if created, err := p.CreateTimeWithContext(ctx); err == nil {
		sample.CreateTime = created
	} else if exited(err) {
		return metrics.ProcessSample{}, false
	}

	if ppid, err := p.PpidWithContext(ctx); err == nil && ppid > 0 && ppid != p.Pid {
		sample.PPID = metrics.Some(ppid)
	}

	if times, err := p.TimesWithContext(ctx); err == nil && times != nil {
		sample.CPUTime = metrics.Some(times.User + times.System)
	} else if exited(err) {
		return metrics.ProcessSample{}, false
	}

	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		sample.RSS = mi.RSS
	}

	if io, err := p.IOCountersWithContext(ctx); err == nil && io != nil {
		sample.ReadBytes = metrics.Some(io.ReadBytes)
		sample.WriteBytes = metrics.Some(io.WriteBytes)
	}

	if cmd, err := p.CmdlineWithContext(ctx); err == nil {
		sample.Command = cmd
	}
	if sample.Command == "" {
		sample.Command = name
	}

	if status, err := p.StatusWithContext(ctx); err == nil && len(status) > 0 {
		sample.State = processState(status[0])
	}

	sample.User = s.users.lookup(ctx, p, procKey{pid: sample.PID, created: sample.CreateTime})
	return sample, true
}

func exited(err error) bool {
	return err != nil && (errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, os.ErrNotExist))
}

func processState(s string) metrics.ProcessState {
	switch s {
	case process.Running:
		return metrics.ProcRunning
	case process.Sleep, process.Idle, process.Wait, process.Lock:
		return metrics.ProcSleeping
	case process.Zombie:
		return metrics.ProcZombie
	case process.Stop:
		return metrics.ProcStopped
	}
	return metrics.ProcUnknown
}

// procKey identifies a process instance; pids are reused, create times are not.
type procKey struct {
	pid     int32
	created int64
}

// userCache remembers owner names per process instance. Resolving a uid to
// a name can hit NSS on every call.
type userCache struct {
	mu    sync.Mutex
	names map[procKey]string
}

func newUserCache() *userCache {
	return &userCache{names: make(map[procKey]string)}
}

func (c *userCache) lookup(ctx context.Context, p *process.Process, key procKey) string {
	c.mu.Lock()
	name, ok := c.names[key]
	c.mu.Unlock()
	if ok {
		return name
	}

	name, err := p.UsernameWithContext(ctx)
	if err != nil {
		if uids, uerr := p.UidsWithContext(ctx); uerr == nil && len(uids) > 0 {
			name = strconv.FormatInt(int64(uids[0]), 10)
		}
	}
	name = strings.TrimSpace(name)

	c.mu.Lock()
	c.names[key] = name
	c.mu.Unlock()
	return name
}

// retain drops entries for processes that no longer exist.
func (c *userCache) retain(live map[procKey]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.names {
		if _, ok := live[k]; !ok {
			delete(c.names, k)
		}
	}
}

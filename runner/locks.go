package runner

import "sync"

// jobLocks hands out one mutex per job id and forgets it once unused.
type jobLocks struct {
	mu    sync.Mutex
	locks map[string]*jobLock
}

type jobLock struct {
	sync.Mutex
	refs int
}

func (l *jobLocks) lock(jobID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*jobLock)
	}
	jl, ok := l.locks[jobID]
	if !ok {
		jl = &jobLock{}
		l.locks[jobID] = jl
	}
	jl.refs++
	l.mu.Unlock()

	jl.Lock()
	return func() {
		jl.Unlock()
		l.mu.Lock()
		jl.refs--
		if jl.refs == 0 {
			delete(l.locks, jobID)
		}
		l.mu.Unlock()
	}
}

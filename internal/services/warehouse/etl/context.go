package etl

// runContext carries the identifier sets accumulated while loading
// dimensions. Fact loaders consult it so a fact row never references a
// dimension row that was not loaded this run.
type runContext struct {
	resolver     *Resolver
	clients      map[int64]bool
	responsibles map[int64]bool
	projects     map[int64]bool
	tasks        map[int64]bool
}

func newRunContext() *runContext {
	return &runContext{
		clients:      make(map[int64]bool),
		responsibles: make(map[int64]bool),
		projects:     make(map[int64]bool),
		tasks:        make(map[int64]bool),
	}
}

package dashboard

// lifecycle tracks mount state and fetch generations of one dashboard.
// Callers hold the owning dashboard's lock.
type lifecycle struct {
	generation uint64
	unmounted  bool
}

// next starts a fetch and returns its generation
func (l *lifecycle) next() (uint64, error) {
	if l.unmounted {
		return 0, ErrUnmounted
	}
	l.generation++
	return l.generation, nil
}

// current reports whether a response for gen may still be applied
func (l *lifecycle) current(gen uint64) bool {
	return !l.unmounted && gen == l.generation
}

func (l *lifecycle) unmount() {
	l.unmounted = true
	l.generation++
}

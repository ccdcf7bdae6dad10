package contracts

import "sync"

// DirSource loads artifacts from a compiler output directory and caches
// them by contract name.
type DirSource struct {
	dir   string
	mu    sync.Mutex
	cache map[string]*Artifact
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir, cache: make(map[string]*Artifact)}
}

func (s *DirSource) Dir() string {
	return s.dir
}

func (s *DirSource) Artifact(name string) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.cache[name]; ok {
		return a, nil
	}
	a, err := LoadArtifact(s.dir, name)
	if err != nil {
		return nil, err
	}
	s.cache[name] = a
	return a, nil
}

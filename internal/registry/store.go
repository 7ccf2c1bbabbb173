package registry

// Store binds a registry to its file.
type Store struct {
	Path string
}

// NewStore creates a Store for the registry at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the registry from disk.
func (s *Store) Load() (*Registry, error) {
	return Load(s.Path)
}

// Upsert loads the registry, applies e and saves it when something changed.
func (s *Store) Upsert(e Entry) (Change, error) {
	r, err := s.Load()
	if err != nil {
		return Unchanged, err
	}

	change, err := r.Upsert(e)
	if err != nil {
		return Unchanged, err
	}
	if change == Unchanged {
		return Unchanged, nil
	}

	if err := r.Save(s.Path); err != nil {
		return Unchanged, err
	}
	return change, nil
}

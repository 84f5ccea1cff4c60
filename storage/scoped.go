package storage

// scopedStore prefixes every key with "scope:"
type scopedStore struct {
	inner  Store
	prefix string
}

// Scoped returns a Store whose keys live under scope inside s. An empty
// scope returns s unchanged.
func Scoped(s Store, scope string) Store {
	if scope == "" {
		return s
	}
	return &scopedStore{inner: s, prefix: scope + ":"}
}

func (s *scopedStore) Get(key string) (string, bool, error) {
	return s.inner.Get(s.prefix + key)
}

func (s *scopedStore) Set(key, value string) error {
	return s.inner.Set(s.prefix+key, value)
}

func (s *scopedStore) Delete(key string) error {
	return s.inner.Delete(s.prefix + key)
}

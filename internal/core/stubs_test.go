package core

import (
	"errors"
	"sort"

	"config-packager/internal/types"
)

// memoryStorage is an in-memory ExtensionStoragePort for core tests.
type memoryStorage struct {
	docs      map[string]types.Document
	providers map[string]string
	packages  []types.PackageInfo
	readErrs  map[string]error
	writeErrs map[string]error
	writes    []string
	listErr   error
}

func newMemoryStorage(docs map[string]types.Document) *memoryStorage {
	if docs == nil {
		docs = map[string]types.Document{}
	}
	return &memoryStorage{
		docs:      docs,
		providers: map[string]string{},
		readErrs:  map[string]error{},
		writeErrs: map[string]error{},
	}
}

func (s *memoryStorage) Read(name string) (types.Document, bool, error) {
	if err := s.readErrs[name]; err != nil {
		return nil, false, err
	}
	doc, ok := s.docs[name]
	return doc, ok, nil
}

func (s *memoryStorage) Write(name string, doc types.Document) error {
	if err := s.writeErrs[name]; err != nil {
		return err
	}
	s.writes = append(s.writes, name)
	s.docs[name] = doc
	return nil
}

func (s *memoryStorage) List() ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *memoryStorage) Provider(name string) (string, bool, error) {
	provider, ok := s.providers[name]
	return provider, ok, nil
}

func (s *memoryStorage) Packages() ([]types.PackageInfo, error) {
	return s.packages, nil
}

var errStorage = errors.New("storage unavailable")

package mocks

import (
	"context"
	"io"
	"sync"
	"testing"
)

type StoredFile struct {
	Data        []byte
	ContentType string
}

type PhotoStorage struct {
	mu        sync.Mutex
	files     map[string]StoredFile
	uploadErr error
}

func NewPhotoStorage() *PhotoStorage {
	return &PhotoStorage{files: make(map[string]StoredFile)}
}

func (s *PhotoStorage) FailUploads(err error) *PhotoStorage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploadErr = err
	return s
}

func (s *PhotoStorage) UploadFile(_ context.Context, key string, file io.Reader, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploadErr != nil {
		return s.uploadErr
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.files[key] = StoredFile{Data: data, ContentType: contentType}
	return nil
}

func (s *PhotoStorage) DeleteFile(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, key)
	return nil
}

func (s *PhotoStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	return keys
}

func (s *PhotoStorage) AssertFileExists(t *testing.T, key string) StoredFile {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[key]
	if !ok {
		t.Errorf("expected file %s to exist", key)
	}
	return f
}

func (s *PhotoStorage) AssertEmpty(t *testing.T) {
	t.Helper()

	if keys := s.Keys(); len(keys) > 0 {
		t.Errorf("expected no stored files, got %v", keys)
	}
}

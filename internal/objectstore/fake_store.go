package objectstore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// FakeStore is an in-memory implementation of Store for testing.
type FakeStore struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]string // objectName -> source file path
	calls   FakeCalls

	// FailAll makes every operation fail (unreachable store).
	FailAll bool
	// FailFiles lists local file basenames whose upload should fail.
	FailFiles []string
	// Policies records applied bucket policies.
	Policies map[string]string
}

// FakeCalls tracks method invocations for test verification.
type FakeCalls struct {
	BucketExists int
	MakeBucket   int
	PutFile      int
	RemoveObject int
}

var errStoreUnreachable = errors.New("store unreachable")

// NewFakeStore creates an empty in-memory store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		buckets:  make(map[string]bool),
		objects:  make(map[string]string),
		Policies: make(map[string]string),
	}
}

func (f *FakeStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.BucketExists++
	if f.FailAll {
		return false, errStoreUnreachable
	}
	return f.buckets[bucket], nil
}

func (f *FakeStore) MakeBucket(ctx context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.MakeBucket++
	if f.FailAll {
		return errStoreUnreachable
	}
	f.buckets[bucket] = true
	return nil
}

func (f *FakeStore) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAll {
		return errStoreUnreachable
	}
	f.Policies[bucket] = policy
	return nil
}

func (f *FakeStore) PutFile(ctx context.Context, bucket, objectName, filePath, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.PutFile++
	if f.FailAll {
		return errStoreUnreachable
	}
	for _, fail := range f.FailFiles {
		if strings.HasSuffix(filePath, fail) {
			return errors.New("simulated upload failure: " + fail)
		}
	}
	f.objects[bucket+"/"+objectName] = filePath
	return nil
}

func (f *FakeStore) RemoveObject(ctx context.Context, bucket, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.RemoveObject++
	if f.FailAll {
		return errStoreUnreachable
	}
	delete(f.objects, bucket+"/"+objectName)
	return nil
}

// Objects returns a copy of the stored object keys.
func (f *FakeStore) Objects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	return keys
}

// Calls returns a snapshot of call counts.
func (f *FakeStore) Calls() FakeCalls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

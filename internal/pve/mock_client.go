package pve

import (
	"context"
)

// MockClient is a function-field mock of Client for tests. Unset
// functions return zero values.
type MockClient struct {
	ListContainersFunc  func(ctx context.Context) ([]Container, error)
	ContainerConfigFunc func(ctx context.Context, id int) (map[string]string, error)
	NextIDFunc          func(ctx context.Context) (int, error)

	ListStoragePoolsFunc func(ctx context.Context) ([]StoragePool, error)
	FreeStorageFunc      func(ctx context.Context, volume string) error

	CreateFunc        func(ctx context.Context, spec ContainerSpec) error
	SetMountPointFunc func(ctx context.Context, id, index int, pool, path string) error
	StartFunc         func(ctx context.Context, id int) error
	StopFunc          func(ctx context.Context, id int) error
	DestroyFunc       func(ctx context.Context, id int) error
}

// Ensure interface compliance.
var _ Client = (*MockClient)(nil)

// ListContainers mocks the container registry listing.
func (m *MockClient) ListContainers(ctx context.Context) ([]Container, error) {
	if m.ListContainersFunc != nil {
		return m.ListContainersFunc(ctx)
	}
	return nil, nil
}

// ContainerConfig mocks the container config query.
func (m *MockClient) ContainerConfig(ctx context.Context, id int) (map[string]string, error) {
	if m.ContainerConfigFunc != nil {
		return m.ContainerConfigFunc(ctx, id)
	}
	return map[string]string{}, nil
}

// NextID mocks the next-free-ID query.
func (m *MockClient) NextID(ctx context.Context) (int, error) {
	if m.NextIDFunc != nil {
		return m.NextIDFunc(ctx)
	}
	return 100, nil
}

// ListStoragePools mocks the storage pool listing.
func (m *MockClient) ListStoragePools(ctx context.Context) ([]StoragePool, error) {
	if m.ListStoragePoolsFunc != nil {
		return m.ListStoragePoolsFunc(ctx)
	}
	return nil, nil
}

// FreeStorage mocks volume release.
func (m *MockClient) FreeStorage(ctx context.Context, volume string) error {
	if m.FreeStorageFunc != nil {
		return m.FreeStorageFunc(ctx, volume)
	}
	return nil
}

// Create mocks container creation.
func (m *MockClient) Create(ctx context.Context, spec ContainerSpec) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, spec)
	}
	return nil
}

// SetMountPoint mocks a bind mount assignment.
func (m *MockClient) SetMountPoint(ctx context.Context, id, index int, pool, path string) error {
	if m.SetMountPointFunc != nil {
		return m.SetMountPointFunc(ctx, id, index, pool, path)
	}
	return nil
}

// Start mocks container start.
func (m *MockClient) Start(ctx context.Context, id int) error {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, id)
	}
	return nil
}

// Stop mocks container stop.
func (m *MockClient) Stop(ctx context.Context, id int) error {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, id)
	}
	return nil
}

// Destroy mocks container destruction.
func (m *MockClient) Destroy(ctx context.Context, id int) error {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, id)
	}
	return nil
}

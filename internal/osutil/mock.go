package osutil

import "os"

// MockPathProvider is a PathProvider built from functions, for tests in other packages.
// Unset functions return zero values.
type MockPathProvider struct {
	UserConfigDirFn func() (string, error)
	UserHomeDirFn   func() (string, error)
	MkdirAllFn      func(path string, perm os.FileMode) error
}

func (m *MockPathProvider) UserConfigDir() (string, error) {
	if m.UserConfigDirFn != nil {
		return m.UserConfigDirFn()
	}
	return "", nil
}

func (m *MockPathProvider) UserHomeDir() (string, error) {
	if m.UserHomeDirFn != nil {
		return m.UserHomeDirFn()
	}
	return "", nil
}

func (m *MockPathProvider) MkdirAll(path string, perm os.FileMode) error {
	if m.MkdirAllFn != nil {
		return m.MkdirAllFn(path, perm)
	}
	return nil
}

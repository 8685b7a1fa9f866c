// Package mocks provides test doubles for the store interface.
package mocks

import (
	"context"
	"time"

	mock "github.com/stretchr/testify/mock"

	model "github.com/sells-group/journey-recon/internal/model"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// LoadCandidates provides a mock function with given fields: ctx, from, to
func (_m *MockStore) LoadCandidates(ctx context.Context, from time.Time, to time.Time) ([]model.Candidate, error) {
	ret := _m.Called(ctx, from, to)

	if len(ret) == 0 {
		panic("no return value specified for LoadCandidates")
	}

	var r0 []model.Candidate
	if rf, ok := ret.Get(0).(func(context.Context, time.Time, time.Time) []model.Candidate); ok {
		r0 = rf(ctx, from, to)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Candidate)
	}

	return r0, ret.Error(1)
}

// CreateUpload provides a mock function with given fields: ctx, source
func (_m *MockStore) CreateUpload(ctx context.Context, source string) (*model.Upload, error) {
	ret := _m.Called(ctx, source)

	if len(ret) == 0 {
		panic("no return value specified for CreateUpload")
	}

	var r0 *model.Upload
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Upload)
	}

	return r0, ret.Error(1)
}

// CompleteUpload provides a mock function with given fields: ctx, uploadID, stats
func (_m *MockStore) CompleteUpload(ctx context.Context, uploadID string, stats model.UploadStats) error {
	ret := _m.Called(ctx, uploadID, stats)

	if len(ret) == 0 {
		panic("no return value specified for CompleteUpload")
	}

	return ret.Error(0)
}

// FailUpload provides a mock function with given fields: ctx, uploadID, reason
func (_m *MockStore) FailUpload(ctx context.Context, uploadID string, reason string) error {
	ret := _m.Called(ctx, uploadID, reason)

	if len(ret) == 0 {
		panic("no return value specified for FailUpload")
	}

	return ret.Error(0)
}

// GetUpload provides a mock function with given fields: ctx, uploadID
func (_m *MockStore) GetUpload(ctx context.Context, uploadID string) (*model.Upload, error) {
	ret := _m.Called(ctx, uploadID)

	if len(ret) == 0 {
		panic("no return value specified for GetUpload")
	}

	var r0 *model.Upload
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Upload)
	}

	return r0, ret.Error(1)
}

// ListUploads provides a mock function with given fields: ctx, limit
func (_m *MockStore) ListUploads(ctx context.Context, limit int) ([]model.Upload, error) {
	ret := _m.Called(ctx, limit)

	if len(ret) == 0 {
		panic("no return value specified for ListUploads")
	}

	var r0 []model.Upload
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Upload)
	}

	return r0, ret.Error(1)
}

// SaveRecords provides a mock function with given fields: ctx, uploadID, rows
func (_m *MockStore) SaveRecords(ctx context.Context, uploadID string, rows []model.InsertRow) (int64, error) {
	ret := _m.Called(ctx, uploadID, rows)

	if len(ret) == 0 {
		panic("no return value specified for SaveRecords")
	}

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string, []model.InsertRow) int64); ok {
		r0 = rf(ctx, uploadID, rows)
	} else {
		r0 = ret.Get(0).(int64)
	}

	return r0, ret.Error(1)
}

// SaveMatchLog provides a mock function with given fields: ctx, uploadID, summaries
func (_m *MockStore) SaveMatchLog(ctx context.Context, uploadID string, summaries []model.MatchSummary) (int64, error) {
	ret := _m.Called(ctx, uploadID, summaries)

	if len(ret) == 0 {
		panic("no return value specified for SaveMatchLog")
	}

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string, []model.MatchSummary) int64); ok {
		r0 = rf(ctx, uploadID, summaries)
	} else {
		r0 = ret.Get(0).(int64)
	}

	return r0, ret.Error(1)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}

	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore. It also registers a
// testing interface on the mock and a cleanup function to assert the
// mocks expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	m := &MockStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

// Package mocks provides gomock implementations of the core ports and
// the session core's API dependency.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	jobs := mocks.NewMockJobRepository(ctrl)
//	jobs.EXPECT().GetByID(gomock.Any(), "j1").Return(job, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/SerjoschDuering/ifcore-platform/internal/core CacheRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=project_repository_mock.go github.com/SerjoschDuering/ifcore-platform/internal/core ProjectRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_repository_mock.go github.com/SerjoschDuering/ifcore-platform/internal/core JobRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=result_repository_mock.go github.com/SerjoschDuering/ifcore-platform/internal/core ResultRepository
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=object_store_mock.go github.com/SerjoschDuering/ifcore-platform/internal/core ObjectStore
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=inference_client_mock.go github.com/SerjoschDuering/ifcore-platform/internal/core InferenceClient
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=submit_api_mock.go -mock_names=API=MockSubmitAPI github.com/SerjoschDuering/ifcore-platform/internal/session/submit API

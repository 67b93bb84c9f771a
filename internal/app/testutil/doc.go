// Package testutil provides test doubles and fixtures for the whisper-web packages.
//
// It contains three parts:
//
// 1. Model doubles (mock_model.go):
//   - MockModel: configurable model.Handle with per-file errors, panics,
//     latency and call tracking
//   - StubBackend: model.Backend that counts loads and can block or fail
//
// 2. Service mocks (mock_services.go):
//   - MockUploadService: testify mock of the v1 upload service for handler tests
//
// 3. Fixtures (fixtures.go):
//   - WriteWAV / WAVBytes: real PCM WAV data built with go-audio
//   - sample transcripts and upload names for every accepted extension
//
// # Usage
//
//	backend := testutil.NewStubBackend(testutil.NewMockModel().WithDefaultResponse("hello"))
//	cache := model.NewCache(backend, zap.NewNop())
//	handle, err := cache.Get(ctx)
//	// backend.LoadCount() == 1
package testutil

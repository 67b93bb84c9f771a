package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"whisper-web/internal/app/model"
)

// MockModel is a configurable model.Handle.
// It records every call, including whether the audio file existed while the
// model was reading it.
type MockModel struct {
	mu sync.Mutex

	DefaultLatency  time.Duration
	DefaultError    error
	DefaultResponse string
	PanicValue      interface{}
	Release         chan struct{}

	ErrorMap    map[string]error
	ResponseMap map[string]string

	CallHistory []ModelCall
	info        model.Info
}

// ModelCall is one recorded Transcribe call.
type ModelCall struct {
	AudioPath  string
	FileExists bool
	Content    []byte
	Timestamp  time.Time
}

// NewMockModel creates a MockModel that answers with a fixed transcript.
func NewMockModel() *MockModel {
	return &MockModel{
		DefaultResponse: "This is a mock transcription result.",
		ErrorMap:        make(map[string]error),
		ResponseMap:     make(map[string]string),
		info: model.Info{
			Backend: "mock",
			Variant: "small",
		},
	}
}

// Transcribe implements model.Handle.
func (m *MockModel) Transcribe(ctx context.Context, audioPath string) (*model.Output, error) {
	content, statErr := os.ReadFile(audioPath)

	m.mu.Lock()
	m.CallHistory = append(m.CallHistory, ModelCall{
		AudioPath:  audioPath,
		FileExists: statErr == nil,
		Content:    content,
		Timestamp:  time.Now(),
	})
	latency := m.DefaultLatency
	release := m.Release
	panicValue := m.PanicValue
	err, hasErr := m.ErrorMap[filepath.Ext(audioPath)]
	if !hasErr {
		err = m.DefaultError
	}
	response, hasResponse := m.ResponseMap[filepath.Ext(audioPath)]
	if !hasResponse {
		response = m.DefaultResponse
	}
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	if latency > 0 {
		time.Sleep(latency)
	}
	if panicValue != nil {
		panic(panicValue)
	}
	if err != nil {
		return nil, err
	}
	if statErr != nil {
		return nil, fmt.Errorf("read audio: %w", statErr)
	}

	return &model.Output{
		Text:     response,
		Language: "en",
		Segments: []model.Segment{{Start: 0, End: time.Second, Text: response}},
	}, nil
}

// Info implements model.Handle.
func (m *MockModel) Info() model.Info {
	return m.info
}

// WithDefaultResponse sets the transcript returned for every file.
func (m *MockModel) WithDefaultResponse(response string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefaultResponse = response
	return m
}

// WithDefaultError makes every call fail with err.
func (m *MockModel) WithDefaultError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefaultError = err
	return m
}

// WithPanic makes every call panic with v.
func (m *MockModel) WithPanic(v interface{}) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PanicValue = v
	return m
}

// WithRelease blocks every call until ch is closed.
func (m *MockModel) WithRelease(ch chan struct{}) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Release = ch
	return m
}

// SetErrorForExt fails calls whose audio path has extension ext (".mp3").
// Staged paths are random, so the extension is the stable key.
func (m *MockModel) SetErrorForExt(ext string, err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorMap[ext] = err
	return m
}

// SetResponseForExt answers calls whose audio path has extension ext.
func (m *MockModel) SetResponseForExt(ext string, response string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseMap[ext] = response
	return m
}

// Calls returns a copy of the call history.
func (m *MockModel) Calls() []ModelCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ModelCall(nil), m.CallHistory...)
}

// CallCount returns how many times Transcribe ran.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CallHistory)
}

// StubBackend is a model.Backend that counts loads.
type StubBackend struct {
	BackendName string
	Model       model.Handle
	LoadError   error
	LoadPanic   interface{}
	LoadLatency time.Duration
	// Gate, when set, blocks Load until closed.
	Gate chan struct{}
	// Started receives one value when a load begins, if set.
	Started chan struct{}

	loads atomic.Int64
}

// NewStubBackend returns a backend whose Load yields handle.
func NewStubBackend(handle model.Handle) *StubBackend {
	return &StubBackend{BackendName: "stub", Model: handle}
}

// Name implements model.Backend.
func (b *StubBackend) Name() string {
	return b.BackendName
}

// Load implements model.Backend.
func (b *StubBackend) Load(ctx context.Context) (model.Handle, error) {
	b.loads.Add(1)
	if b.Started != nil {
		b.Started <- struct{}{}
	}
	if b.Gate != nil {
		<-b.Gate
	}
	if b.LoadLatency > 0 {
		time.Sleep(b.LoadLatency)
	}
	if b.LoadPanic != nil {
		panic(b.LoadPanic)
	}
	if b.LoadError != nil {
		return nil, b.LoadError
	}
	return b.Model, nil
}

// LoadCount returns how many times Load ran.
func (b *StubBackend) LoadCount() int64 {
	return b.loads.Load()
}

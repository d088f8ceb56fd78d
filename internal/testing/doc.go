// Package testing provides test utilities, fakes, and fixtures for unit tests.
//
// This package centralizes common testing patterns to avoid duplication across
// test files:
//   - FakeData / FakeIdentity: func-field fakes for the two backends
//   - FakeProvider: in-memory input provider
//   - ScriptedPrompter: canned answers for operator prompts
//   - RecordingObserver: captures progress output for assertions
//   - Fixture: pre-configured happy-path wiring for pipeline scenarios
//
// Usage:
//
//	f := testing.NewFixture()
//	f.WithCaretakers(testing.Caretaker("a@example.com"))
//	ctx := f.Context(t)
package testing

// Package test provides infrastructure and utilities for integration testing of faceswap.
//
// A Suite wires the real API server, the real API client, staging
// directories in a temp dir and a file-based SQLite job database. The
// pipeline is replaced by a Pipeline whose behaviour each test chooses.
//
// Example Usage:
//
//	func TestExample(t *testing.T) {
//	    suite := test.NewSuite(t)
//	    defer suite.Cleanup()
//
//	    suite.Pipeline.SetMode(test.PipelineFail)
//	    _, err := suite.APIClient.Process(suite.Context(), req)
//	}
package test

package constants

import "time"

// DefaultRequestTimeout is the default timeout applied to non-streaming requests.
const DefaultRequestTimeout = 30 * time.Second

// DefaultClientTimeout is the default timeout of calls to the orchestration server.
const DefaultClientTimeout = 15 * time.Second

// DefaultLogsKeepAlive is the default interval between keep-alive comments on log streams.
const DefaultLogsKeepAlive = 15 * time.Second

// TestContextTimeout is the timeout for test contexts.
const TestContextTimeout = 5 * time.Second

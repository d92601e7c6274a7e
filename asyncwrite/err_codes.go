package asyncwrite

const (
	// CodeAsyncTimeout is returned by Task.Await when the write did not finish in time.
	// The write itself may still complete later.
	CodeAsyncTimeout = "ASYNC_TIMEOUT"
	// CodeWriterClosed is returned for writes submitted to, or still queued in, a closed Writer.
	CodeWriterClosed = "ASYNC_WRITER_CLOSED"
)

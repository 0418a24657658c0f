package media

// Processor is a stage that receives samples and forwards them to the next writer.
type Processor[T any] interface {
	SetWriter(writer WriteCloser[T])
	WriteCloser[T]
}

type FrameProcessor = Processor[*AudioFrame]

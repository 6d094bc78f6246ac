package model

// ResultState tags a Result variant.
type ResultState int

const (
	ResultLoading ResultState = iota
	ResultSuccess
	ResultError
)

// Result is a tagged variant over loading / success / error. Consumers switch
// on State exhaustively; Data is only meaningful for ResultSuccess and Err
// for ResultError.
type Result[T any] struct {
	State ResultState `json:"state"`
	Data  T           `json:"data,omitempty"`
	Err   error       `json:"-"`
}

func Loading[T any]() Result[T] {
	return Result[T]{State: ResultLoading}
}

func Success[T any](data T) Result[T] {
	return Result[T]{State: ResultSuccess, Data: data}
}

func Failure[T any](err error) Result[T] {
	return Result[T]{State: ResultError, Err: err}
}

// IsSuccess reports whether the result carries data.
func (r Result[T]) IsSuccess() bool {
	return r.State == ResultSuccess
}

package common

import "errors"

var (
	// ErrorInvalidValue is returned by the numeric algorithms for input they can't work with.
	ErrorInvalidValue = errors.New("invalid value")

	// missing source file or missing curve mnemonic
	ErrorNotFound = errors.New("not found")
	// malformed or unparseable well log source
	ErrorFormat = errors.New("format error")
	// statistic requested over a curve with no usable samples
	ErrorEmptyInput = errors.New("empty input")
	// export or render destination could not be written
	ErrorIO = errors.New("io error")
	// invalid percentile bounds, unknown category or config key
	ErrorConfig = errors.New("config error")
)

package registry

import (
	"fmt"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// stdLogger routes plugin log calls to the process logger. Values are
// stringified so tools can log whatever they have on hand.
type stdLogger struct{}

func (stdLogger) Debug(msg string, kv ...any) { logger.Debug(msg, stringPairs(kv)...) }
func (stdLogger) Info(msg string, kv ...any)  { logger.Info(msg, stringPairs(kv)...) }
func (stdLogger) Warn(msg string, kv ...any)  { logger.Warn(msg, stringPairs(kv)...) }

func (stdLogger) Error(msg string, kv ...any) {
	pairs := make([]string, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		val := ""
		if i+1 < len(kv) {
			val = fmt.Sprint(kv[i+1])
		}
		pairs = append(pairs, fmt.Sprint(kv[i]), val)
	}
	logger.LogErr(serr.New(msg, pairs...))
}

func stringPairs(kv []any) []any {
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		out = append(out, fmt.Sprint(kv[i]))
		if i+1 < len(kv) {
			out = append(out, fmt.Sprint(kv[i+1]))
		} else {
			out = append(out, "")
		}
	}
	return out
}

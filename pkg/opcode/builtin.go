package opcode

import (
	"embed"
	"fmt"
	"sync"
)

//go:embed assets/corevm.yaml
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtinSet  *Dataset
	builtinErr  error
)

// Builtin returns the embedded corevm instruction set, parsed once. It is the
// dataset used when no file or stdin input is given, so `opx` always has
// something to show.
func Builtin() (*Dataset, error) {
	builtinOnce.Do(func() {
		data, err := builtinFS.ReadFile("assets/corevm.yaml")
		if err != nil {
			builtinErr = fmt.Errorf("read embedded dataset: %w", err)
			return
		}
		builtinSet, builtinErr = LoadBytes(data)
		if builtinErr != nil {
			builtinErr = fmt.Errorf("decode embedded dataset: %w", builtinErr)
		}
	})
	return builtinSet, builtinErr
}

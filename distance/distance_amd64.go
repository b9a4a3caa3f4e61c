package distance

import (
	"runtime"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"golang.org/x/sys/cpu"
)

/* On amd64 gonum ships SSE2 assembly for the float64 dot product, which the
 * pure Go loop cannot match. We only switch when the feature bit is actually
 * reported so that emulated or restricted environments keep the portable
 * kernels. Note the file name has _amd64 suffix, so it only compiles if
 * runtime.GOARCH is amd64.
 *
 * Read more at https://pkg.go.dev/cmd/go#hdr-Build_constraints
 */

func hasASMSupport() bool {
	return cpu.X86.HasSSE2
}

func init() {
	if hasASMSupport() {
		log.Debug().Str("GOARCH", runtime.GOARCH).Msg("Using gonum assembly kernel for dot product")
		dotProductImpl = floats.Dot
	} else {
		log.Warn().Str("GOARCH", runtime.GOARCH).Msg("No SSE2 support, using pure Go dot product")
	}
}

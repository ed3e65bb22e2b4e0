package v1

import "github.com/sublimator/catalogue-tools-sub002/internal/parseerr"

const errUnexpectedEOF = parseerr.UnexpectedEOF

func newParseErr(offset int64, kind parseerr.Kind) *parseerr.Error {
	return parseerr.New(offset, kind)
}

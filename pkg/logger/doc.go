// Package logger provides structured logging attribute helpers built on Go's
// standard slog package.
//
// The helpers cover the attributes the client library logs most often: errors,
// request tracing, HTTP metadata, and timing. All helpers are nil-safe and
// return an empty slog.Attr for absent values, so call sites never need
// explicit nil checks:
//
//	import "github.com/harunote/harunote-go/pkg/logger"
//
//	log.Info("token refreshed",
//		logger.Component("apiclient"),
//		logger.Elapsed(start),
//	)
//
//	log.Error("refresh rejected",
//		logger.Error(err),
//		logger.StatusCode(resp.StatusCode),
//	)
package logger

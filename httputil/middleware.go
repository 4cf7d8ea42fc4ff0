// Package httputil provides HTTP middleware for pcompress's optional
// debug/stats endpoint.
package httputil

import (
	"net/http"

	"github.com/coreos/pcompress/capnslog"
)

var log = capnslog.NewPackageLogger("github.com/coreos/pcompress", "httputil")

// LoggingMiddleware logs every request it forwards to Next.
type LoggingMiddleware struct {
	Next http.Handler
}

func (l *LoggingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Infof("HTTP %s %v", r.Method, r.URL)
	l.Next.ServeHTTP(w, r)
}

package orrery

import (
	"io"

	kitlog "github.com/go-kit/kit/log"
)

// NewLogger returns a logfmt logger writing to w, with a UTC timestamp on every line.
func NewLogger(w io.Writer) kitlog.Logger {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(w))
	return kitlog.With(klog, "ts", kitlog.DefaultTimestampUTC)
}

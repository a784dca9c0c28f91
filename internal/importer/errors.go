package importer

import "github.com/sirupsen/logrus"

const errorDetailLimit = 100

// errorLimiter logs truncated per-item errors up to a cap, then keeps
// counting silently so a failing run cannot flood the output.
type errorLimiter struct {
	logger *logrus.Logger
	max    int
	count  int
}

func newErrorLimiter(logger *logrus.Logger, max int) *errorLimiter {
	return &errorLimiter{logger: logger, max: max}
}

func (l *errorLimiter) log(id string, err error) {
	l.count++
	if l.count <= l.max {
		l.logger.WithField("property_id", id).
			Warnf("Import error: %s", truncate(err.Error(), errorDetailLimit))
	} else if l.count == l.max+1 {
		l.logger.Warn("Suppressing further error detail; totals stay in the summary")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

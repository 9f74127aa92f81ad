package metrics

import "time"

type Counter interface {
	Add(valueToAdd int)
}

type Histogram interface {
	Track(begin time.Time)
}

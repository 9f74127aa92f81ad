package metrics

// ErrorKind classifies row failures for the row_failures_total metric.
type ErrorKind string

const (
	ErrorKindFormat           = ErrorKind("format")
	ErrorKindUnsupportedType  = ErrorKind("unsupported_type")
	ErrorKindTypeMismatch     = ErrorKind("type_mismatch")
	ErrorKindOverflow         = ErrorKind("overflow")
	ErrorKindNotRepresentable = ErrorKind("not_representable")
	ErrorKindUnexpectedNull   = ErrorKind("unexpected_null")
	ErrorKindOther            = ErrorKind("other")

	rowsDecodedName        = "rows_decoded_total"
	rowsDecodedDescription = "Running total of result rows converted into native values"

	rowFailuresName        = "row_failures_total"
	rowFailuresErrorLabel  = "error"
	rowFailuresDescription = "Running total of result rows that could not be converted, by error kind"

	rowScanDurationName        = "row_scan_duration_seconds"
	rowScanDurationDescription = "Histogram that tracks how long it takes to decode and convert one row"
)

var (
	ErrorKinds = []ErrorKind{
		ErrorKindFormat,
		ErrorKindUnsupportedType,
		ErrorKindTypeMismatch,
		ErrorKindOverflow,
		ErrorKindNotRepresentable,
		ErrorKindUnexpectedNull,
		ErrorKindOther,
	}

	RowsDecoded = NewMetric(rowsDecodedName, rowsDecodedDescription)
	RowFailures = NewMetric(rowFailuresName, rowFailuresDescription)

	RowScanDuration = NewMetric(rowScanDurationName, rowScanDurationDescription)

	rowScanDurationBuckets = []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01}
)

type CodecMetrics struct {
	RowsDecoded     Counter
	RowFailures     map[ErrorKind]Counter
	RowScanDuration Histogram
}

func NewCodecMetrics(metricFactory MetricFactory) (*CodecMetrics, error) {
	rowsDecoded, err := metricFactory.GetOrCreateCounter(RowsDecoded)
	if err != nil {
		return nil, err
	}

	rowFailures := make(map[ErrorKind]Counter, len(ErrorKinds))
	for _, kind := range ErrorKinds {
		c, err := metricFactory.GetOrCreateCounter(
			RowFailures.WithLabels(map[string]string{rowFailuresErrorLabel: string(kind)}))
		if err != nil {
			return nil, err
		}
		rowFailures[kind] = c
	}

	rowScanDuration, err := metricFactory.GetOrCreateHistogram(RowScanDuration, rowScanDurationBuckets)
	if err != nil {
		return nil, err
	}

	return &CodecMetrics{
		RowsDecoded:     rowsDecoded,
		RowFailures:     rowFailures,
		RowScanDuration: rowScanDuration,
	}, nil
}

func (recv *CodecMetrics) RowFailed(kind ErrorKind) {
	c, ok := recv.RowFailures[kind]
	if !ok {
		c = recv.RowFailures[ErrorKindOther]
	}
	c.Add(1)
}

package resultset

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/cqlvalue"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/metrics"
	log "github.com/sirupsen/logrus"
)

// ScanFunc builds one element from a decoded row.
type ScanFunc[T any] func(row *Row) (T, error)

type Option func(*options)

type options struct {
	columns []*message.ColumnMetadata
	metrics *metrics.CodecMetrics
}

// WithColumns supplies the column metadata for results sent without it, for example rows of a prepared statement
// executed with skip metadata.
func WithColumns(columns []*message.ColumnMetadata) Option {
	return func(o *options) {
		o.columns = columns
	}
}

func WithMetrics(codecMetrics *metrics.CodecMetrics) Option {
	return func(o *options) {
		o.metrics = codecMetrics
	}
}

// TypedRows is a forward only cursor over the rows of one result. Rows are decoded and converted lazily, one per
// call to Next. A TypedRows has a single owner and cannot be rewound.
type TypedRows[T any] struct {
	columns       []*message.ColumnMetadata
	columnIndexes map[string]int
	data          []message.Row
	scan          ScanFunc[T]
	metrics       *metrics.CodecMetrics

	next       int
	current    T
	currentErr error
	positioned bool
}

var errNotPositioned = errors.New("no current row, call Next first")

func NewTypedRows[T any](result *message.RowsResult, scan ScanFunc[T], opts ...Option) (*TypedRows[T], error) {
	if scan == nil {
		return nil, errors.New("scan function is required")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var data []message.Row
	columns := o.columns
	if result != nil {
		data = result.Data
		if columns == nil && result.Metadata != nil {
			columns = result.Metadata.Columns
		}
	}
	if columns == nil {
		if len(data) > 0 {
			return nil, ErrMissingMetadata
		}
		columns = []*message.ColumnMetadata{}
	}

	return &TypedRows[T]{
		columns:       columns,
		columnIndexes: ColumnIndexes(columns),
		data:          data,
		scan:          scan,
		metrics:       o.metrics,
	}, nil
}

func (recv *TypedRows[T]) Columns() []*message.ColumnMetadata {
	return recv.columns
}

// Next advances to the following row and converts it. It returns false once every row has been consumed and keeps
// returning false afterwards.
func (recv *TypedRows[T]) Next() bool {
	if recv.next >= len(recv.data) {
		// drop the buffered rows, the cursor cannot go back
		recv.data = nil
		recv.next = 0
		recv.positioned = false
		var zero T
		recv.current = zero
		recv.currentErr = nil
		return false
	}

	rowIdx := recv.next
	recv.next++
	recv.positioned = true
	recv.current, recv.currentErr = recv.convert(rowIdx, recv.data[rowIdx])
	return true
}

// Row returns the element of the current row, or the *RowError explaining why the row could not be converted.
// A failed row does not end the iteration.
func (recv *TypedRows[T]) Row() (T, error) {
	if !recv.positioned {
		var zero T
		return zero, errNotPositioned
	}
	return recv.current, recv.currentErr
}

func (recv *TypedRows[T]) Remaining() int {
	return len(recv.data) - recv.next
}

// All drains the cursor. Stopping the loop early leaves the unvisited rows available to Next.
func (recv *TypedRows[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for recv.Next() {
			if !yield(recv.Row()) {
				return
			}
		}
	}
}

func (recv *TypedRows[T]) convert(rowIdx int, data message.Row) (T, error) {
	begin := time.Now()
	out, err := recv.scanRow(data)
	if err != nil {
		var rowErr *RowError
		if !errors.As(err, &rowErr) {
			rowErr = &RowError{Column: -1, Err: err}
			err = rowErr
		}
		rowErr.Row = rowIdx
		log.Debugf("Could not convert row %d: %v", rowIdx, err)
		if recv.metrics != nil {
			recv.metrics.RowFailed(errorKind(err))
		}
		var zero T
		return zero, err
	}

	if recv.metrics != nil {
		recv.metrics.RowsDecoded.Add(1)
		recv.metrics.RowScanDuration.Track(begin)
	}
	return out, nil
}

func (recv *TypedRows[T]) scanRow(data message.Row) (T, error) {
	row, err := ParseRow(recv.columns, recv.columnIndexes, data)
	if err != nil {
		var zero T
		return zero, err
	}
	return recv.scan(row)
}

func errorKind(err error) metrics.ErrorKind {
	var formatErr *cqlvalue.FormatError
	var unsupportedErr *cqlvalue.UnsupportedTypeError
	var mismatchErr *cqlvalue.TypeMismatchError
	var overflowErr *cqlvalue.OverflowError
	switch {
	case errors.As(err, &formatErr):
		return metrics.ErrorKindFormat
	case errors.As(err, &unsupportedErr):
		return metrics.ErrorKindUnsupportedType
	case errors.As(err, &mismatchErr):
		return metrics.ErrorKindTypeMismatch
	case errors.As(err, &overflowErr):
		return metrics.ErrorKindOverflow
	case errors.Is(err, cqlvalue.ErrNotRepresentable):
		return metrics.ErrorKindNotRepresentable
	case errors.Is(err, cqlvalue.ErrUnexpectedNull):
		return metrics.ErrorKindUnexpectedNull
	default:
		return metrics.ErrorKindOther
	}
}

type Tuple2[A, B any] struct {
	V1 A
	V2 B
}

type Tuple3[A, B, C any] struct {
	V1 A
	V2 B
	V3 C
}

// ScanColumn converts the cell at position idx, reporting failures as a *RowError for that column.
func ScanColumn[T cqlvalue.Convertible](row *Row, idx int) (T, error) {
	val, err := row.Get(idx)
	if err != nil {
		var zero T
		return zero, &RowError{Column: idx, Err: err}
	}
	out, err := cqlvalue.Convert[T](val)
	if err != nil {
		return out, &RowError{Column: idx, Name: row.Columns[idx].Name, Err: err}
	}
	return out, nil
}

func ScanColumnNullable[T cqlvalue.Convertible](row *Row, idx int) (*T, error) {
	val, err := row.Get(idx)
	if err != nil {
		return nil, &RowError{Column: idx, Err: err}
	}
	out, err := cqlvalue.ConvertNullable[T](val)
	if err != nil {
		return nil, &RowError{Column: idx, Name: row.Columns[idx].Name, Err: err}
	}
	return out, nil
}

func IntoTyped1[A cqlvalue.Convertible](result *message.RowsResult, opts ...Option) (*TypedRows[A], error) {
	return newTupleRows[A](result, 1, func(row *Row) (A, error) {
		return ScanColumn[A](row, 0)
	}, opts)
}

func IntoTypedNullable1[A cqlvalue.Convertible](result *message.RowsResult, opts ...Option) (*TypedRows[*A], error) {
	return newTupleRows[*A](result, 1, func(row *Row) (*A, error) {
		return ScanColumnNullable[A](row, 0)
	}, opts)
}

func IntoTyped2[A, B cqlvalue.Convertible](
	result *message.RowsResult, opts ...Option) (*TypedRows[Tuple2[A, B]], error) {
	return newTupleRows[Tuple2[A, B]](result, 2, func(row *Row) (Tuple2[A, B], error) {
		var out Tuple2[A, B]
		var err error
		if out.V1, err = ScanColumn[A](row, 0); err != nil {
			return Tuple2[A, B]{}, err
		}
		if out.V2, err = ScanColumn[B](row, 1); err != nil {
			return Tuple2[A, B]{}, err
		}
		return out, nil
	}, opts)
}

func IntoTyped3[A, B, C cqlvalue.Convertible](
	result *message.RowsResult, opts ...Option) (*TypedRows[Tuple3[A, B, C]], error) {
	return newTupleRows[Tuple3[A, B, C]](result, 3, func(row *Row) (Tuple3[A, B, C], error) {
		var out Tuple3[A, B, C]
		var err error
		if out.V1, err = ScanColumn[A](row, 0); err != nil {
			return Tuple3[A, B, C]{}, err
		}
		if out.V2, err = ScanColumn[B](row, 1); err != nil {
			return Tuple3[A, B, C]{}, err
		}
		if out.V3, err = ScanColumn[C](row, 2); err != nil {
			return Tuple3[A, B, C]{}, err
		}
		return out, nil
	}, opts)
}

// newTupleRows checks that the result has exactly as many columns as the tuple. An empty result without metadata
// passes.
func newTupleRows[T any](result *message.RowsResult, arity int, scan ScanFunc[T], opts []Option) (*TypedRows[T], error) {
	rows, err := NewTypedRows(result, scan, opts...)
	if err != nil {
		return nil, err
	}
	if len(rows.columns) == 0 && len(rows.data) == 0 {
		return rows, nil
	}
	if len(rows.columns) != arity {
		return nil, fmt.Errorf("result has %d columns but %d were requested", len(rows.columns), arity)
	}
	return rows, nil
}

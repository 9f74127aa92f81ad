package resultset

import (
	"errors"
	"fmt"

	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/zdm-cqlcodec/cqlcodec/pkg/cqlvalue"
)

type Row struct {
	ColumnIndexes map[string]int
	Columns       []*message.ColumnMetadata
	Values        []cqlvalue.Value
}

func NewRow(
	columnIndexes map[string]int,
	columns []*message.ColumnMetadata,
	values []cqlvalue.Value) *Row {
	return &Row{
		ColumnIndexes: columnIndexes,
		Columns:       columns,
		Values:        values,
	}
}

type RowSet struct {
	ColumnIndexes map[string]int
	Columns       []*message.ColumnMetadata
	PagingState   []byte
	Rows          []*Row
}

// RowError is the failure of one row. Column is -1 when the row as a whole is malformed.
type RowError struct {
	Row    int
	Column int
	Name   string
	Err    error
}

func (recv *RowError) Error() string {
	if recv.Column < 0 {
		return fmt.Sprintf("could not parse row %d: %v", recv.Row, recv.Err)
	}
	return fmt.Sprintf("could not parse col %d (%v) of row %d: %v", recv.Column, recv.Name, recv.Row, recv.Err)
}

func (recv *RowError) Unwrap() error {
	return recv.Err
}

type ColumnNotFoundErr struct {
	Name string
}

func (recv *ColumnNotFoundErr) Error() string {
	return fmt.Sprintf("could not find column: %v", recv.Name)
}

var ErrMissingMetadata = errors.New(
	"could not parse rows result because the server did not return any column metadata")

// ColumnIndexes maps every column name to its position. When a name repeats the first position wins.
func ColumnIndexes(columns []*message.ColumnMetadata) map[string]int {
	columnIndexes := make(map[string]int, len(columns))
	for idx, col := range columns {
		if _, exists := columnIndexes[col.Name]; !exists {
			columnIndexes[col.Name] = idx
		}
	}
	return columnIndexes
}

// ParseRow decodes every cell of a row in column order. Either all cells decode or the row fails with a *RowError
// describing the first bad column; the caller fills in RowError.Row.
func ParseRow(
	columns []*message.ColumnMetadata,
	columnIndexes map[string]int,
	row message.Row) (*Row, error) {
	if len(row) != len(columns) {
		return nil, &RowError{
			Column: -1,
			Err:    fmt.Errorf("column metadata doesn't match row length: %d columns, %d cells", len(columns), len(row)),
		}
	}

	values := make([]cqlvalue.Value, len(row))
	for colIdx, cell := range row {
		decoded, err := cqlvalue.Decode(columns[colIdx].Type, cell)
		if err != nil {
			return nil, &RowError{Column: colIdx, Name: columns[colIdx].Name, Err: err}
		}
		values[colIdx] = decoded
	}
	return NewRow(columnIndexes, columns, values), nil
}

// ParseRowsResult decodes a whole result. Unlike TypedRows it stops at the first row that fails.
func ParseRowsResult(result *message.RowsResult) (*RowSet, error) {
	if result == nil || result.Metadata == nil || result.Metadata.Columns == nil {
		if result == nil || len(result.Data) == 0 {
			rs := &RowSet{
				ColumnIndexes: map[string]int{},
				Columns:       []*message.ColumnMetadata{},
				Rows:          []*Row{},
			}
			if result != nil && result.Metadata != nil {
				rs.PagingState = result.Metadata.PagingState
			}
			return rs, nil
		}
		return nil, ErrMissingMetadata
	}

	columns := result.Metadata.Columns
	columnIndexes := ColumnIndexes(columns)
	rows := make([]*Row, len(result.Data))
	for rowIdx, row := range result.Data {
		parsed, err := ParseRow(columns, columnIndexes, row)
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				rowErr.Row = rowIdx
			}
			return nil, err
		}
		rows[rowIdx] = parsed
	}

	return &RowSet{
		ColumnIndexes: columnIndexes,
		Columns:       columns,
		PagingState:   result.Metadata.PagingState,
		Rows:          rows,
	}, nil
}

func (recv *Row) GetByColumn(column string) (cqlvalue.Value, bool) {
	colIdx, exists := recv.ColumnIndexes[column]
	if !exists {
		return nil, exists
	}

	return recv.Values[colIdx], exists
}

func (recv *Row) Get(idx int) (cqlvalue.Value, error) {
	if idx < 0 || idx >= len(recv.Values) {
		return nil, fmt.Errorf("index %d is out of range for %d columns", idx, len(recv.Values))
	}

	return recv.Values[idx], nil
}

func (recv *Row) ContainsColumn(column string) bool {
	_, ok := recv.GetColumn(column)
	return ok
}

func (recv *Row) GetColumn(column string) (*message.ColumnMetadata, bool) {
	colIdx, ok := recv.ColumnIndexes[column]
	if !ok {
		return nil, false
	}

	return recv.Columns[colIdx], true
}

// IsNull reports whether the column holds a null. Unknown columns count as null.
func (recv *Row) IsNull(column string) bool {
	val, ok := recv.GetByColumn(column)
	if !ok {
		return true
	}

	return cqlvalue.IsNull(val)
}

// Column converts the named column of a row.
func Column[T cqlvalue.Convertible](row *Row, name string) (T, error) {
	val, ok := row.GetByColumn(name)
	if !ok {
		var zero T
		return zero, &ColumnNotFoundErr{Name: name}
	}
	return cqlvalue.Convert[T](val)
}

// ColumnNullable converts the named column of a row, yielding nil for nulls.
func ColumnNullable[T cqlvalue.Convertible](row *Row, name string) (*T, error) {
	val, ok := row.GetByColumn(name)
	if !ok {
		return nil, &ColumnNotFoundErr{Name: name}
	}
	return cqlvalue.ConvertNullable[T](val)
}

// Column returns the index of the named column.
func (recv *RowSet) Column(name string) (int, error) {
	idx, ok := recv.ColumnIndexes[name]
	if !ok {
		return -1, &ColumnNotFoundErr{Name: name}
	}
	return idx, nil
}

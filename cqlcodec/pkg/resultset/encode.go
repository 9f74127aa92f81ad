package resultset

import (
	"fmt"

	"github.com/datastax/go-cassandra-native-protocol/message"
	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

// EncodeRowsResult assembles a RESULT Rows body from serialized cells. Null cells become absent columns, unset
// cells are rejected because they only exist in requests.
func EncodeRowsResult(
	columns []*message.ColumnMetadata,
	rows [][]*primitive.Value) (*message.RowsResult, error) {
	encodedRows := make([]message.Row, len(rows))
	for rowIdx, cells := range rows {
		if len(cells) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells but there are %d columns", rowIdx, len(cells), len(columns))
		}
		newRow := make([]message.Column, len(columns))
		for colIdx, cell := range cells {
			if cell == nil {
				return nil, fmt.Errorf("col %d of row %d is nil", colIdx, rowIdx)
			}
			switch cell.Type {
			case primitive.ValueTypeNull:
				newRow[colIdx] = nil
			case primitive.ValueTypeUnset:
				return nil, fmt.Errorf("col %d of row %d is unset, results cannot carry unset values", colIdx, rowIdx)
			default:
				contents := cell.Contents
				if contents == nil {
					contents = []byte{}
				}
				newRow[colIdx] = contents
			}
		}
		encodedRows[rowIdx] = newRow
	}

	return &message.RowsResult{
		Metadata: &message.RowsMetadata{
			ColumnCount: int32(len(columns)),
			Columns:     columns,
		},
		Data: encodedRows,
	}, nil
}

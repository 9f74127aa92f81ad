package cqlvalue

import (
	"github.com/datastax/go-cassandra-native-protocol/primitive"
)

// Counter is the native value of a counter column.
//
// The database never accepts a counter value as such, only a delta applied with "SET c = c + ?". For that reason
// Counter has no MarshalCql method and is not part of Serializable: the only cell that can be built from it is the
// one returned by Increment.
type Counter int64

func (recv *Counter) UnmarshalCql(v Value) error {
	switch val := v.(type) {
	case CounterValue:
		*recv = Counter(val)
		return nil
	case NullValue, nil:
		return ErrUnexpectedNull
	default:
		return &TypeMismatchError{Expected: primitive.DataTypeCodeCounter, Actual: v.DataTypeCode()}
	}
}

// Increment builds the parameter cell for "UPDATE ... SET c = c + ?". Negative deltas decrement.
func Increment(delta Counter) *primitive.Value {
	return &primitive.Value{Type: primitive.ValueTypeRegular, Contents: encodeCounter(int64(delta))}
}

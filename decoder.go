package nova

import (
	"go.dedis.ch/nova/abi"
	"go.dedis.ch/nova/executor"
	"golang.org/x/xerrors"
)

// ErrArityMismatch is returned when the number of returned byte slices
// disagrees with the number of declared return types.
var ErrArityMismatch = xerrors.New("return arity mismatch")

// DecodeResult maps the raw outcome of a call back to typed values
// using the endpoint's declared return types. Only a successful result
// is decoded: a contract rejection or an unsettled call surfaces
// directly as an error carrying the status. Each returned byte slice is
// decoded independently in top mode; a shape disagreement propagates
// as the codec's decode error and is definitive.
func DecodeResult(res *executor.CallResult, outputs []*abi.Type) (
	[]*abi.Value, error) {
	switch res.Status {
	case executor.StatusUserError:
		return nil, xerrors.Errorf("call rejected by contract: %s",
			res.Message)
	case executor.StatusNetworkFailure:
		return nil, xerrors.Errorf("call not settled: %w", res.Cause)
	}

	if len(res.ReturnData) != len(outputs) {
		return nil, xerrors.Errorf("%d return values for %d declared "+
			"types: %w", len(res.ReturnData), len(outputs),
			ErrArityMismatch)
	}

	values := make([]*abi.Value, len(outputs))
	for i, t := range outputs {
		v, err := abi.Decode(res.ReturnData[i], t, abi.ModeTop)
		if err != nil {
			return nil, xerrors.Errorf("return value %d as %s: %w",
				i, t, err)
		}
		values[i] = v
	}

	return values, nil
}

// DecodeSingleResult is DecodeResult for endpoints declaring exactly
// one return value.
func DecodeSingleResult(res *executor.CallResult, t *abi.Type) (
	*abi.Value, error) {
	values, err := DecodeResult(res, []*abi.Type{t})
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

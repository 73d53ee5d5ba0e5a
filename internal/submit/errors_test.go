package submit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		msg  string
		want Kind
	}{
		{"Package object does not exist with ID 0xabc", KindContractNotFound},
		{"Object 0xcap is owned by account address 0xother", KindPermissionDenied},
		{"Error checking transaction input objects: TypeMismatch", KindTypeMismatch},
		{"CommandArgumentError { arg_idx: 6, kind: InvalidBCSBytes }", KindTypeMismatch},
		{"Object 0xcap not found", KindUnknown},
		{"insufficient gas", KindUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(errors.New(tc.msg)), tc.msg)
	}
	assert.Equal(t, KindUnknown, Classify(nil))
}

func TestExecutionErrorUserMessage(t *testing.T) {
	cause := errors.New("insufficient gas")
	err := &ExecutionError{Op: "add grade", Kind: KindUnknown, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to add grade: insufficient gas", err.UserMessage())

	denied := &ExecutionError{Op: "issue certificate", Kind: KindPermissionDenied, Err: cause}
	assert.Contains(t, denied.UserMessage(), "admin capability")
}

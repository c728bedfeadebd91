package model

import (
	"errors"
	"fmt"
	"testing"

	"sealaddr.dev/sealaddr/storage"
)

func TestMapErrClassifiesStoreErrors(t *testing.T) {
	cases := []struct {
		err  error
		code ErrorCode
	}{
		{storage.ErrNotFound, ErrNotFound},
		{fmt.Errorf("get: %w", storage.ErrCIDMismatch), ErrCIDMismatch},
		{storage.ErrInvalidCID, ErrInvalidCID},
		{storage.ErrInvalidRecord, ErrInvalidRequest},
		{errors.New("disk full"), ErrInternal},
	}
	for _, tc := range cases {
		var ce *CodedError
		if !errors.As(MapErr(tc.err), &ce) {
			t.Fatalf("MapErr(%v): not a CodedError", tc.err)
		}
		if ce.Code != tc.code {
			t.Fatalf("MapErr(%v): code %s, want %s", tc.err, ce.Code, tc.code)
		}
	}
}

func TestMapErrPassesThroughCodedErrors(t *testing.T) {
	if MapErr(nil) != nil {
		t.Fatalf("MapErr(nil) must be nil")
	}
	coded := NewError(ErrMissingStore, "no backend configured")
	got := MapErr(fmt.Errorf("open store: %w", coded))
	if got != error(coded) {
		t.Fatalf("MapErr rewrapped a coded error: %v", got)
	}
}

// errors_test.go: Tests for the error kinds and propagation policy
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"testing"

	"github.com/agilira/go-errors"
)

func TestNewEngineError_CarriesCodeAndOperation(t *testing.T) {
	err := newEngineError(ErrCodeInvalidArgument, "TestOp", "bad input")
	if GetErrorCode(err) != ErrCodeInvalidArgument {
		t.Fatalf("GetErrorCode = %v, want %v", GetErrorCode(err), ErrCodeInvalidArgument)
	}
	if !HasErrorCode(err, ErrCodeInvalidArgument) {
		t.Fatal("expected HasErrorCode to report true for the code the error was created with")
	}
}

func TestWrapEngineError_PreservesCode(t *testing.T) {
	cause := newEngineError(ErrCodeIoError, "inner", "disk failure")
	wrapped := wrapEngineError(cause, ErrCodeIoError, "outer op failed")
	if GetErrorCode(wrapped) != ErrCodeIoError {
		t.Fatalf("GetErrorCode(wrapped) = %v, want %v", GetErrorCode(wrapped), ErrCodeIoError)
	}
}

func TestGetErrorCode_NonEngineErrorReturnsEmpty(t *testing.T) {
	var plain error = errPlain("boom")
	if GetErrorCode(plain) != "" {
		t.Fatalf("expected empty code for a non-engine error, got %v", GetErrorCode(plain))
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestSetErrorHandler_InstallsAndRestoresDefault(t *testing.T) {
	calls := 0
	SetErrorHandler(func(err *errors.Error) { calls++ })
	handleError(newEngineError(ErrCodeInvalidState, "Test", "x"))
	if calls != 1 {
		t.Fatalf("installed handler was called %d times, want 1", calls)
	}

	SetErrorHandler(nil)
	if GetErrorHandler() == nil {
		t.Fatal("expected a non-nil default handler after passing nil")
	}
}

func TestRecoverAsFault_ReturnsErrorOnPanicAndNilOtherwise(t *testing.T) {
	func() {
		defer func() {
			err := recoverAsFault(ErrCodeInvalidState, "TestRecoverAsFault")
			if err == nil {
				t.Error("expected a non-nil error recovered from the panic")
			}
		}()
		panic("synthetic failure")
	}()

	func() {
		defer func() {
			err := recoverAsFault(ErrCodeInvalidState, "TestRecoverAsFault")
			if err != nil {
				t.Errorf("expected nil when no panic occurred, got %v", err)
			}
		}()
	}()
}

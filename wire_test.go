// wire_test.go: Tests for the message-sink wire contract
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "testing"

func TestRequestDeduper_AcceptsNewRequestOnce(t *testing.T) {
	d := NewRequestDeduper()
	calls := 0
	process := func(WireRequest) (uint32, error) {
		calls++
		return 3, nil
	}

	resp := d.Accept(WireRequest{MessageID: MsgIDLogBatch, RequestID: 1}, process)
	if resp.Status != StatusOK || resp.Processed != 3 {
		t.Fatalf("first accept: got %+v, want OK/3", resp)
	}
	if calls != 1 {
		t.Fatalf("process called %d times, want 1", calls)
	}

	resp = d.Accept(WireRequest{MessageID: MsgIDLogBatch, RequestID: 1}, process)
	if resp.Status != StatusAlreadyHandled {
		t.Fatalf("duplicate accept: got status %v, want StatusAlreadyHandled", resp.Status)
	}
	if calls != 1 {
		t.Fatalf("process called %d times after duplicate, want still 1", calls)
	}
}

func TestRequestDeduper_RejectsWrongMessageID(t *testing.T) {
	d := NewRequestDeduper()
	resp := d.Accept(WireRequest{MessageID: MsgIDHeartbeat, RequestID: 1}, func(WireRequest) (uint32, error) {
		t.Fatal("process should not be called for a non-log-batch message")
		return 0, nil
	})
	if resp.Status != StatusProtocolError {
		t.Fatalf("status = %v, want StatusProtocolError", resp.Status)
	}
}

func TestRequestDeduper_ReportsProcessErrorAsServerError(t *testing.T) {
	d := NewRequestDeduper()
	wantErr := "boom"
	resp := d.Accept(WireRequest{MessageID: MsgIDLogBatch, RequestID: 5}, func(WireRequest) (uint32, error) {
		return 1, errString(wantErr)
	})
	if resp.Status != StatusServerError {
		t.Fatalf("status = %v, want StatusServerError", resp.Status)
	}
	if resp.Processed != 1 {
		t.Fatalf("Processed = %d, want 1 (partial progress preserved on error)", resp.Processed)
	}
}

func TestRequestDeduper_DistinctRequestIDsAllProcess(t *testing.T) {
	d := NewRequestDeduper()
	for id := uint64(0); id < 10; id++ {
		resp := d.Accept(WireRequest{MessageID: MsgIDLogBatch, RequestID: id}, func(WireRequest) (uint32, error) {
			return 1, nil
		})
		if resp.Status != StatusOK {
			t.Fatalf("request %d: status = %v, want StatusOK", id, resp.Status)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
